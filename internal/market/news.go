package market

import (
	"fmt"
	"time"
)

type NewsItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Source  string `json:"source"`
	URL     string `json:"url"`
}

// NewsForAsset returns the canned headline set for one asset. Stocks and
// cryptos get different story templates, dated relative to now.
func NewsForAsset(asset Asset, now time.Time) []NewsItem {
	daysAgo := func(d int) string {
		return now.AddDate(0, 0, -d).Format(time.RFC3339)
	}

	if asset.Type == AssetStock {
		return []NewsItem{
			{
				ID:      "1",
				Title:   fmt.Sprintf("%s expected to rally on upcoming product launch", asset.Name),
				Content: fmt.Sprintf("%s is set to launch a new flagship product next month. Industry analysts expect a strong market reception.", asset.Name),
				Date:    daysAgo(2),
				Source:  "Economy Daily",
				URL:     "#",
			},
			{
				ID:      "2",
				Title:   fmt.Sprintf("%s beats quarterly estimates", asset.Name),
				Content: fmt.Sprintf("%s reported quarterly results today. Revenue rose 15%% year over year and operating profit climbed 20%%, ahead of consensus.", asset.Name),
				Date:    daysAgo(5),
				Source:  "Investor Journal",
				URL:     "#",
			},
			{
				ID:      "3",
				Title:   fmt.Sprintf("%s announces overseas expansion plan", asset.Name),
				Content: fmt.Sprintf("%s unveiled a plan to expand abroad, focusing on Southeast Asia and Europe to strengthen its global position.", asset.Name),
				Date:    daysAgo(10),
				Source:  "Global Biz",
				URL:     "#",
			},
		}
	}

	return []NewsItem{
		{
			ID:      "1",
			Title:   fmt.Sprintf("%s trading volume surges over 24 hours", asset.Name),
			Content: fmt.Sprintf("24-hour volume in %s jumped sharply and the price is trending up. Analysts expect the momentum to hold for now.", asset.Name),
			Date:    daysAgo(1),
			Source:  "Coin Daily",
			URL:     "#",
		},
		{
			ID:      "2",
			Title:   fmt.Sprintf("%s to list on additional major exchanges", asset.Name),
			Content: fmt.Sprintf("%s is scheduled to list on more major global exchanges, which should improve liquidity.", asset.Name),
			Date:    daysAgo(3),
			Source:  "Crypto News",
			URL:     "#",
		},
		{
			ID:      "3",
			Title:   fmt.Sprintf("%s team ships protocol upgrade", asset.Name),
			Content: fmt.Sprintf("The %s developers announced a protocol upgrade expected to improve network throughput and security.", asset.Name),
			Date:    daysAgo(7),
			Source:  "Blockchain Times",
			URL:     "#",
		},
	}
}
