package workforce

import "fmt"

// Key layout:
//
//	worker/<workerID>                        -> Worker JSON
//	worker_idx/<email>                       -> workerID (email uniqueness guard)
//	tasklog/<workerID>/<logID>               -> TaskLog JSON
//	taskopen/<workerID>/<projectID>/<recordID> -> logID (open-log pointer)
//	statelog/<workerID>/<logID>              -> StateLog JSON
//	stateopen/<workerID>                     -> logID (current interval)
func workerKey(workerID string) []byte {
	return []byte(fmt.Sprintf("worker/%s", workerID))
}

func workerPrefix() []byte {
	return []byte("worker/")
}

func emailIdxKey(email string) []byte {
	return []byte(fmt.Sprintf("worker_idx/%s", email))
}

func taskLogKey(workerID, logID string) []byte {
	return []byte(fmt.Sprintf("tasklog/%s/%s", workerID, logID))
}

func taskLogPrefix(workerID string) []byte {
	return []byte(fmt.Sprintf("tasklog/%s/", workerID))
}

func taskLogRoot() []byte {
	return []byte("tasklog/")
}

func openTaskKey(workerID, projectID, recordID string) []byte {
	return []byte(fmt.Sprintf("taskopen/%s/%s/%s", workerID, projectID, recordID))
}

func stateLogKey(workerID, logID string) []byte {
	return []byte(fmt.Sprintf("statelog/%s/%s", workerID, logID))
}

func stateLogPrefix(workerID string) []byte {
	return []byte(fmt.Sprintf("statelog/%s/", workerID))
}

func openStateKey(workerID string) []byte {
	return []byte(fmt.Sprintf("stateopen/%s", workerID))
}
