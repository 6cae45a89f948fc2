package model

import (
	"net/http"
	"strings"
	"time"

	C "github.com/xjrad/miniapp-data-analysis/config"
	P "github.com/xjrad/miniapp-data-analysis/userpath"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DB_SUCCESS = -1

// eventRow mirrors one row of the raw event table. Optional JSON
// properties are coalesced to empty strings in SQL so the scan never
// sees NULLs.
type eventRow struct {
	DistinctID     string  `gorm:"column:distinct_id"`
	Event          string  `gorm:"column:event"`
	CreatedAt      int64   `gorm:"column:created_at"`
	URLPath        string  `gorm:"column:url_path"`
	URL            string  `gorm:"column:url"`
	PageTitle      string  `gorm:"column:page_title"`
	Referrer       string  `gorm:"column:referrer"`
	ScreenName     string  `gorm:"column:screen_name"`
	ElementContent string  `gorm:"column:element_content"`
	EventDuration  float64 `gorm:"column:event_duration"`
}

const pathEventsQuery = `
	SELECT
		distinct_id,
		event,
		created_at,
		IFNULL(JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$url_path"')), '') AS url_path,
		IFNULL(CAST(JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties.event_duration')) AS DECIMAL(20,4)), 0) AS event_duration,
		IFNULL(JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$title"')), '') AS page_title,
		IFNULL(url, '') AS url,
		IFNULL(referrer, '') AS referrer,
		IFNULL(JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$screen_name"')), '') AS screen_name,
		IFNULL(JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$element_content"')), '') AS element_content
	FROM summit
	WHERE 1=1
`

// BuildOptionConditions translates selected analysis options into SQL
// match conditions. Multiple options combine with OR. Unknown options
// are ignored.
func BuildOptionConditions(selectedOptions []string) ([]string, []interface{}) {
	conditions := []string{}
	params := []interface{}{}

	for _, option := range selectedOptions {
		switch {
		case strings.HasPrefix(option, "event_"):
			conditions = append(conditions, "event = ?")
			params = append(params, strings.TrimPrefix(option, "event_"))
		case strings.HasPrefix(option, "page_"):
			conditions = append(conditions, `JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$url_path"')) LIKE ?`)
			params = append(params, "%"+strings.TrimPrefix(option, "page_")+"%")
		case strings.HasPrefix(option, "url_"):
			conditions = append(conditions, "url LIKE ?")
			params = append(params, "%"+strings.TrimPrefix(option, "url_")+"%")
		case strings.HasPrefix(option, "title_"):
			conditions = append(conditions, `JSON_UNQUOTE(JSON_EXTRACT(all_json, '$.properties."$title"')) = ?`)
			params = append(params, strings.TrimPrefix(option, "title_"))
		case strings.HasPrefix(option, "referrer_"):
			conditions = append(conditions, "referrer LIKE ?")
			params = append(params, "%"+strings.TrimPrefix(option, "referrer_")+"%")
		}
	}
	return conditions, params
}

// TimeCondition bounds the query window for a named time range. Unknown
// ranges add no condition.
func TimeCondition(timeRange string) (string, []interface{}) {
	current := time.Now()

	var start, end time.Time
	switch timeRange {
	case "today":
		start = now.With(current).BeginningOfDay()
		end = current
	case "yesterday":
		end = now.With(current).BeginningOfDay()
		start = end.AddDate(0, 0, -1)
	case "last7days":
		start = current.AddDate(0, 0, -7)
		end = current
	case "last30days":
		start = current.AddDate(0, 0, -30)
		end = current
	default:
		return "", nil
	}

	return " AND created_at BETWEEN ? AND ?", []interface{}{start.Unix(), end.Unix()}
}

// GetPathEvents fetches the event window for a path analysis: rows
// matching any of the selected options within the time range, ordered
// by user then time, bounded by limit.
func GetPathEvents(selectedOptions []string, timeRange string, limit int) ([]P.RawEvent, int) {
	db := C.GetServices().Db

	optionConditions, params := BuildOptionConditions(selectedOptions)
	if len(optionConditions) == 0 {
		return nil, http.StatusBadRequest
	}

	query := pathEventsQuery
	timeCondition, timeParams := TimeCondition(timeRange)
	query += timeCondition
	params = append(timeParams, params...)

	query += " AND (" + strings.Join(optionConditions, " OR ") + ")"
	query += " ORDER BY distinct_id, created_at LIMIT ?"
	params = append(params, limit)

	var rows []eventRow
	if err := db.Raw(query, params...).Scan(&rows).Error; err != nil {
		err = errors.Wrap(err, "path events query failed")
		log.WithFields(log.Fields{"error": err, "time_range": timeRange}).Error("GetPathEvents Failed")
		return nil, http.StatusInternalServerError
	}

	events := make([]P.RawEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, P.RawEvent{
			UserID:           r.DistinctID,
			EventName:        r.Event,
			TimestampSeconds: r.CreatedAt,
			URLPath:          r.URLPath,
			URL:              r.URL,
			PageTitle:        r.PageTitle,
			Referrer:         r.Referrer,
			ScreenName:       r.ScreenName,
			ElementContent:   r.ElementContent,
			EventDurationMs:  r.EventDuration,
		})
	}
	return events, DB_SUCCESS
}
