package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	C "github.com/xjrad/miniapp-data-analysis/config"
	M "github.com/xjrad/miniapp-data-analysis/model"
	P "github.com/xjrad/miniapp-data-analysis/userpath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Test command.
// curl -i -X GET 'http://localhost:8080/api/user-path-analysis?selectedOptions=event_$MPViewScreen&pathType=start&pathLength=all&minConversions=1'
func UserPathAnalysisHandler(c *gin.Context) {
	qParams := c.Request.URL.Query()

	selectedOptions := []string{}
	for _, option := range strings.Split(qParams.Get("selectedOptions"), ",") {
		if option != "" {
			selectedOptions = append(selectedOptions, option)
		}
	}
	if len(selectedOptions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one analysis option is required"})
		return
	}

	conf := C.GetConfig()

	pathType := P.AnchorMode(qParams.Get("pathType"))
	if pathType == "" {
		pathType = P.AnchorStart
	}
	startOption := ""
	endOption := ""
	if pathType == P.AnchorStart {
		startOption = qParams.Get("startOption")
	} else if pathType == P.AnchorEnd {
		endOption = qParams.Get("endOption")
	}

	pathLength := qParams.Get("pathLength")
	if pathLength == "" {
		pathLength = "all"
	}

	minConversions := conf.MinConversionsDefault
	if raw := qParams.Get("minConversions"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minConversions must be a non-negative integer"})
			return
		}
		minConversions = parsed
	}

	timeRange := qParams.Get("timeRange")
	if timeRange == "" {
		timeRange = "last7days"
	}
	pageFilter := qParams.Get("pageFilter")

	log.WithFields(log.Fields{
		"selected_options": selectedOptions,
		"path_type":        pathType,
		"start_option":     startOption,
		"end_option":       endOption,
		"path_length":      pathLength,
		"min_conversions":  minConversions,
		"time_range":       timeRange,
	}).Info("User path analysis request")

	events, errCode := M.GetPathEvents(selectedOptions, timeRange, conf.MaxQueryLimit)
	if errCode != M.DB_SUCCESS {
		c.JSON(errCode, gin.H{"error": "failed to fetch path events"})
		return
	}

	result := P.Analyze(events, P.AnalysisOptions{
		Options: P.Options{
			SessionTimeout: time.Duration(conf.SessionTimeoutMinutes) * time.Minute,
			TitleMaxLen:    conf.TitleTruncateLen,
			ContentMaxLen:  conf.ContentTruncateLen,
		},
		AggregateOptions: P.AggregateOptions{
			PathType:    pathType,
			StartOption: startOption,
			EndOption:   endOption,
			PathLength:  pathLength,
			MinCount:    minConversions,
		},
		Keyword: pageFilter,
	})

	log.WithFields(log.Fields{"paths": len(result.PathStats)}).Info("User path analysis done")
	c.JSON(http.StatusOK, result)
}

// Test command.
// curl -i -X GET http://localhost:8080/api/user-path-analysis/mock
func MockUserPathHandler(c *gin.Context) {
	c.JSON(http.StatusOK, mockAnalysisResult())
}

// mockAnalysisResult is a static demo payload for frontend development.
func mockAnalysisResult() P.AnalysisResult {
	nodes := []string{
		"Mini Program Launch",
		"Home Page",
		"Product Search",
		"Product Detail",
		"Add To Cart",
		"Order Submit",
	}

	sankey := P.SankeyData{Nodes: []P.SankeyNode{}, Links: []P.SankeyLink{}}
	for _, name := range nodes {
		sankey.Nodes = append(sankey.Nodes, P.SankeyNode{Name: name})
	}
	links := []struct {
		source, target, value int
	}{
		{0, 1, 1000},
		{1, 2, 600},
		{1, 3, 300},
		{2, 3, 400},
		{3, 4, 200},
		{4, 5, 80},
	}
	for _, l := range links {
		sankey.Links = append(sankey.Links, P.SankeyLink{
			Source:     l.source,
			Target:     l.target,
			Value:      l.value,
			SourceName: nodes[l.source],
			TargetName: nodes[l.target],
		})
	}

	return P.AnalysisResult{
		Sankey: sankey,
		StepDistribution: P.StepDistribution{Steps: []P.DistributionItem{
			{Value: 35, Name: "2-3 step paths"},
			{Value: 30, Name: "4-5 step paths"},
			{Value: 25, Name: "6-8 step paths"},
			{Value: 10, Name: "9+ step paths"},
		}},
		PathConversion: P.PathConversion{
			TotalUsers: 1000,
			FunnelData: []P.FunnelStep{
				{Value: 1000, Name: "Mini Program Launch"},
				{Value: 850, Name: "Home Page"},
				{Value: 600, Name: "Product Search"},
				{Value: 350, Name: "Product Detail"},
				{Value: 200, Name: "Add To Cart"},
				{Value: 80, Name: "Order Submit"},
			},
		},
		PathStats: map[string]P.PathStat{
			P.JoinSteps([]string{"Mini Program Launch", "Home Page", "Product Search"}): {
				Count: 450, Percentage: "45.0%", AvgDuration: "85.0s", ConversionRate: "75.0%",
			},
			P.JoinSteps([]string{"Mini Program Launch", "Home Page", "Product Detail"}): {
				Count: 280, Percentage: "28.0%", AvgDuration: "120.0s", ConversionRate: "68.0%",
			},
			P.JoinSteps([]string{"Product Search", "Product Detail", "Add To Cart"}): {
				Count: 180, Percentage: "18.0%", AvgDuration: "150.0s", ConversionRate: "45.0%",
			},
			P.JoinSteps([]string{"Product Detail", "Add To Cart", "Order Submit"}): {
				Count: 75, Percentage: "7.5%", AvgDuration: "200.0s", ConversionRate: "38.0%",
			},
		},
	}
}
