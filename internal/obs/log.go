package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

const serviceName = "tenantgate-api"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared structured logger used across the service.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits a structured JSON log line. Every entry is stamped with the
// service name unless the caller set one, so lines from all packages aggregate
// under the same key downstream.
func LogRequest(entry map[string]any) {
	out := make(map[string]any, len(entry)+1)
	out["service"] = serviceName
	for k, v := range entry {
		out[k] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		Logger().Println(`{"service":"` + serviceName + `","level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
