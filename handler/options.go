package handler

import (
	"net/http"

	M "github.com/xjrad/miniapp-data-analysis/model"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Test command.
// curl -i -X GET http://localhost:8080/api/analysis-options
func AnalysisOptionsHandler(c *gin.Context) {
	// A failing source contributes an empty group instead of failing
	// the whole listing.
	fetch := func(name string, get func() ([]M.AnalysisOption, int)) []M.AnalysisOption {
		options, errCode := get()
		if errCode != M.DB_SUCCESS {
			log.WithFields(log.Fields{"source": name}).Error("Analysis option source failed")
			return []M.AnalysisOption{}
		}
		return options
	}

	events := fetch("events", M.GetEventOptions)
	pages := fetch("pages", M.GetPageOptions)
	urls := fetch("urls", M.GetURLOptions)
	titles := fetch("titles", M.GetTitleOptions)
	referrers := fetch("referrers", M.GetReferrerOptions)

	all := []M.AnalysisOption{}
	all = append(all, events...)
	all = append(all, pages...)
	all = append(all, urls...)
	all = append(all, titles...)
	all = append(all, referrers...)

	log.WithFields(log.Fields{
		"events":    len(events),
		"pages":     len(pages),
		"urls":      len(urls),
		"titles":    len(titles),
		"referrers": len(referrers),
	}).Info("Analysis options listed")

	c.JSON(http.StatusOK, gin.H{"options": gin.H{
		"events":    events,
		"pages":     pages,
		"urls":      urls,
		"titles":    titles,
		"referrers": referrers,
		"all":       all,
	}})
}

// Test command.
// curl -i -X GET http://localhost:8080/api/events
func GetEventsHandler(c *gin.Context) {
	options, errCode := M.GetEventOptions()
	if errCode != M.DB_SUCCESS {
		c.JSON(errCode, gin.H{"error": "failed to fetch events"})
		return
	}

	// Flat legacy format.
	events := []gin.H{}
	for _, o := range options {
		events = append(events, gin.H{
			"event":        o.Value,
			"count":        o.Count,
			"display_name": o.DisplayName,
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Test command.
// curl -i -X GET http://localhost:8080/api/pages
func GetPagesHandler(c *gin.Context) {
	options, errCode := M.GetPageOptions()
	if errCode != M.DB_SUCCESS {
		c.JSON(errCode, gin.H{"error": "failed to fetch pages"})
		return
	}

	pages := []gin.H{}
	for _, o := range options {
		pages = append(pages, gin.H{
			"original_path": o.Value,
			"clean_path":    o.Key[len("page_"):],
			"count":         o.Count,
		})
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}
