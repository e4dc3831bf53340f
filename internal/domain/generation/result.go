package generation

import "github.com/dreamina/aigateway/internal/domain/poller"

// toPollerStatus adapts a raw history record to the Smart Poller's Status
// shape.
func toPollerStatus(rec historyRecord) poller.Status {
	state := poller.StateRunning
	switch rec.Status {
	case "completed", "success", "2":
		state = poller.StateCompleted
	case "failed", "4":
		state = poller.StateFailed
	}

	return poller.Status{
		State:      state,
		FailCode:   rec.FailCode,
		ItemCount:  len(rec.ItemList),
		FinishTime: rec.Task.FinishTime,
	}
}

// extractAssetURLs pulls whatever asset URL each item_list entry carries,
// trying every known field shape in turn (observed to vary by generation
// kind). Entries with none of those fields populated are skipped.
func extractAssetURLs(items []historyItem) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		switch {
		case item.ImageURL != "":
			urls = append(urls, item.ImageURL)
		case item.VideoURL != "":
			urls = append(urls, item.VideoURL)
		case item.LargeImage.ImageURL != "":
			urls = append(urls, item.LargeImage.ImageURL)
		case item.URL != "":
			urls = append(urls, item.URL)
		}
	}
	return urls
}
