package config

import "strings"

type BrowserConfig interface {
	GetBridgeAddr() string
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type Browser struct{}

var _ BrowserConfig = Browser{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

func (Browser) GetBridgeAddr() string {
	addr := GetEnv("BRIDGE_ADDR", "127.0.0.1:8090")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	return addr
}

// GetAllowedOrigins reads a comma separated ALLOWED_ORIGINS list
func (Browser) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{}
	for _, o := range strings.Split(GetEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = nullValue{}
		}
	}
	return origins
}

func (Browser) GetAllowedMethods() string {
	return "GET, POST, DELETE"
}

func (Browser) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
