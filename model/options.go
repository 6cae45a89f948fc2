package model

import (
	"net/http"
	"net/url"
	"strings"

	C "github.com/xjrad/miniapp-data-analysis/config"
	P "github.com/xjrad/miniapp-data-analysis/userpath"

	log "github.com/sirupsen/logrus"
)

// AnalysisOption is one selectable entry for the analysis UI: an event
// type, a page path, a URL, a page title or a referrer channel.
type AnalysisOption struct {
	Type        string `json:"type"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	Count       int    `json:"count"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
}

type optionRow struct {
	Value string `gorm:"column:value"`
	Count int    `gorm:"column:count"`
}

func queryOptionRows(query string) ([]optionRow, int) {
	db := C.GetServices().Db

	var rows []optionRow
	if err := db.Raw(query).Scan(&rows).Error; err != nil {
		log.WithFields(log.Fields{"error": err}).Error("Analysis option query failed")
		return nil, http.StatusInternalServerError
	}
	return rows, DB_SUCCESS
}

// GetEventOptions lists the most frequent event types.
func GetEventOptions() ([]AnalysisOption, int) {
	rows, errCode := queryOptionRows(`
		SELECT event AS value, COUNT(*) AS count
		FROM summit
		WHERE event IS NOT NULL AND event != ''
		GROUP BY event
		ORDER BY count DESC
		LIMIT 50`)
	if errCode != DB_SUCCESS {
		return nil, errCode
	}

	options := []AnalysisOption{}
	for _, r := range rows {
		options = append(options, AnalysisOption{
			Type:        "event",
			Key:         "event_" + r.Value,
			Value:       r.Value,
			Count:       r.Count,
			DisplayName: P.FormatEventLabel(r.Value),
			Category:    "Event Type",
		})
	}
	return options, DB_SUCCESS
}

// GetPageOptions lists the most visited page paths, cleaned for display.
func GetPageOptions() ([]AnalysisOption, int) {
	rows, errCode := queryOptionRows(`
		SELECT JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$url_path"')) AS value, COUNT(*) AS count
		FROM summit
		WHERE JSON_EXTRACT(all_json, '$.properties."$url_path"') IS NOT NULL
			AND JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$url_path"')) NOT IN ('null', '', 'undefined')
		GROUP BY value
		ORDER BY count DESC
		LIMIT 50`)
	if errCode != DB_SUCCESS {
		return nil, errCode
	}

	options := []AnalysisOption{}
	for _, r := range rows {
		if strings.TrimSpace(r.Value) == "" {
			continue
		}
		cleanPath := P.CleanPagePath(r.Value)
		if cleanPath == P.UnknownPath {
			continue
		}
		options = append(options, AnalysisOption{
			Type:        "page",
			Key:         "page_" + cleanPath,
			Value:       r.Value,
			Count:       r.Count,
			DisplayName: "Page: " + cleanPath,
			Category:    "Page Path",
		})
	}
	return options, DB_SUCCESS
}

// GetURLOptions lists the most visited URLs by their cleaned path part.
func GetURLOptions() ([]AnalysisOption, int) {
	rows, errCode := queryOptionRows(`
		SELECT url AS value, COUNT(*) AS count
		FROM summit
		WHERE url IS NOT NULL AND url != ''
			AND url NOT LIKE '%localhost%'
			AND url NOT LIKE '%127.0.0.1%'
		GROUP BY url
		ORDER BY count DESC
		LIMIT 30`)
	if errCode != DB_SUCCESS {
		return nil, errCode
	}

	options := []AnalysisOption{}
	for _, r := range rows {
		if strings.TrimSpace(r.Value) == "" {
			continue
		}
		parsed, err := url.Parse(r.Value)
		if err != nil {
			continue
		}
		path := parsed.Path
		if path == "" {
			path = r.Value
		}
		if path == "" || path == "/" {
			continue
		}
		cleanURL := P.CleanPagePath(path)
		if cleanURL == P.UnknownPath {
			continue
		}
		options = append(options, AnalysisOption{
			Type:        "url",
			Key:         "url_" + cleanURL,
			Value:       r.Value,
			Count:       r.Count,
			DisplayName: "URL: " + cleanURL,
			Category:    "URL Path",
		})
	}
	return options, DB_SUCCESS
}

// GetTitleOptions lists the most frequent page titles.
func GetTitleOptions() ([]AnalysisOption, int) {
	rows, errCode := queryOptionRows(`
		SELECT JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$title"')) AS value, COUNT(*) AS count
		FROM summit
		WHERE JSON_EXTRACT(all_json, '$.properties."$title"') IS NOT NULL
			AND JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$title"')) NOT IN ('null', '', 'undefined')
		GROUP BY value
		ORDER BY count DESC
		LIMIT 30`)
	if errCode != DB_SUCCESS {
		return nil, errCode
	}

	options := []AnalysisOption{}
	for _, r := range rows {
		title := strings.TrimSpace(r.Value)
		if title == "" {
			continue
		}
		displayTitle := title
		if len([]rune(displayTitle)) > 30 {
			displayTitle = string([]rune(displayTitle)[:30]) + "..."
		}
		options = append(options, AnalysisOption{
			Type:        "title",
			Key:         "title_" + r.Value,
			Value:       r.Value,
			Count:       r.Count,
			DisplayName: "Title: " + displayTitle,
			Category:    "Page Title",
		})
	}
	return options, DB_SUCCESS
}

// GetReferrerOptions lists the most frequent referrers grouped into
// known channels.
func GetReferrerOptions() ([]AnalysisOption, int) {
	rows, errCode := queryOptionRows(`
		SELECT referrer AS value, COUNT(*) AS count
		FROM summit
		WHERE referrer IS NOT NULL AND referrer != ''
			AND referrer NOT LIKE '%localhost%'
		GROUP BY referrer
		ORDER BY count DESC
		LIMIT 20`)
	if errCode != DB_SUCCESS {
		return nil, errCode
	}

	options := []AnalysisOption{}
	for _, r := range rows {
		if strings.TrimSpace(r.Value) == "" {
			continue
		}
		category, displayName := P.CategorizeReferrer(r.Value)
		options = append(options, AnalysisOption{
			Type:        "referrer",
			Key:         "referrer_" + category,
			Value:       r.Value,
			Count:       r.Count,
			DisplayName: displayName,
			Category:    "Referrer Channel",
		})
	}
	return options, DB_SUCCESS
}
