package handler_test

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	C "github.com/xjrad/miniapp-data-analysis/config"
	H "github.com/xjrad/miniapp-data-analysis/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	r := gin.New()
	H.InitRoutes(r)
	return r
}

func TestHealth(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserPathAnalysisRequiresOptions(t *testing.T) {
	r := newRouter()

	// No selectedOptions at all.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/user-path-analysis", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Empty csv value.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/user-path-analysis?selectedOptions=,", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	jsonResponse, _ := ioutil.ReadAll(w.Body)
	var jsonResponseMap map[string]interface{}
	json.Unmarshal(jsonResponse, &jsonResponseMap)
	assert.NotEqual(t, "", jsonResponseMap["error"])
}

func TestUserPathAnalysisRejectsBadMinConversions(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/user-path-analysis?selectedOptions=event_click&minConversions=abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/user-path-analysis?selectedOptions=event_click&minConversions=-1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMockUserPathAnalysis(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/user-path-analysis/mock", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	jsonResponse, _ := ioutil.ReadAll(w.Body)
	var jsonResponseMap map[string]interface{}
	json.Unmarshal(jsonResponse, &jsonResponseMap)

	// All four sections of the contract are present.
	assert.NotNil(t, jsonResponseMap["sankey"])
	assert.NotNil(t, jsonResponseMap["stepDistribution"])
	assert.NotNil(t, jsonResponseMap["pathConversion"])
	assert.NotNil(t, jsonResponseMap["pathStats"])

	sankey := jsonResponseMap["sankey"].(map[string]interface{})
	assert.Equal(t, 6, len(sankey["nodes"].([]interface{})))
	assert.Equal(t, 6, len(sankey["links"].([]interface{})))

	conversion := jsonResponseMap["pathConversion"].(map[string]interface{})
	assert.Equal(t, float64(1000), conversion["totalUsers"].(float64))
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	C.InitTest()
	os.Exit(m.Run())
}
