package browser

// Route path constants
const (
	RouteHealth          = "/healthz"
	RouteWebSocket       = "/ws"
	RouteAPI             = "/api/"
	RouteProximityStatus = "/api/proximity/status"
	RouteProximityCheck  = "/api/proximity/check"
	RouteProximityClear  = "/api/proximity/clear"
)
