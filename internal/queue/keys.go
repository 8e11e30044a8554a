package queue

import "fmt"

// Key layout:
//
//	q/item/<itemID>                  -> Item JSON
//	q/pending/<projectID>/<itemID>   -> empty (itemID sorts by creation time, so scan order is FIFO)
//	q/byrecord/<projectID>/<recordID>-> itemID (idempotent-enqueue guard)
//	q/assigned/<workerID>/<itemID>   -> projectID (open assignments per worker, across projects)
//	q/counts/<projectID>             -> Counts JSON
func itemKey(itemID string) []byte {
	return []byte(fmt.Sprintf("q/item/%s", itemID))
}

func pendingKey(projectID, itemID string) []byte {
	return []byte(fmt.Sprintf("q/pending/%s/%s", projectID, itemID))
}

func pendingPrefix(projectID string) []byte {
	return []byte(fmt.Sprintf("q/pending/%s/", projectID))
}

func byRecordKey(projectID, recordID string) []byte {
	return []byte(fmt.Sprintf("q/byrecord/%s/%s", projectID, recordID))
}

func assignedKey(workerID, itemID string) []byte {
	return []byte(fmt.Sprintf("q/assigned/%s/%s", workerID, itemID))
}

func assignedPrefix(workerID string) []byte {
	return []byte(fmt.Sprintf("q/assigned/%s/", workerID))
}

func assignedRoot() []byte {
	return []byte("q/assigned/")
}

func countsKey(projectID string) []byte {
	return []byte(fmt.Sprintf("q/counts/%s", projectID))
}

func countsPrefix() []byte {
	return []byte("q/counts/")
}
