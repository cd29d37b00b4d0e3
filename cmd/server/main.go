package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	dbprovider "github.com/wso2/web-analytics-service/internal/system/database/provider"
	esprovider "github.com/wso2/web-analytics-service/internal/system/eventstore/provider"

	"github.com/wso2/web-analytics-service/internal/system/config"
	"github.com/wso2/web-analytics-service/internal/system/constants"
	"github.com/wso2/web-analytics-service/internal/system/log"
	"github.com/wso2/web-analytics-service/internal/system/managers"
)

func main() {
	wasHome := getWASHome()
	const configFile = "repository/conf/deployment.yaml"

	envFiles, _ := filepath.Glob("config/*.env")
	_ = godotenv.Load(envFiles...)

	// Load the configuration file.
	wasConfig, err := config.LoadConfig(wasHome, configFile)
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize runtime configurations.
	if err := config.InitializeAnalyticsRuntime(wasHome, wasConfig); err != nil {
		stdlog.Fatalf("Failed to initialize analytics runtime: %v", err)
	}

	// Initialize logger.
	if err := log.Init(wasConfig.Log.LogLevel); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.GetLogger()

	// Initialize the backing store clients once; everything downstream
	// receives them by injection.
	if err := dbprovider.Init(wasConfig.DataSource); err != nil {
		logger.Fatal("Failed to initialize profile store", log.Error(err))
	}
	if err := esprovider.Init(wasConfig.EventStore); err != nil {
		logger.Fatal("Failed to initialize event store", log.Error(err))
	}

	serverAddr := fmt.Sprintf("%s:%d", wasConfig.Addr.Host, wasConfig.Addr.Port)
	mux := enableCORS(initMultiplexer())

	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener", log.Error(err), log.String("addr", serverAddr))
	}
	logger.Info("Web analytics service started", log.String("addr", serverAddr))

	server := &http.Server{Handler: mux}
	if err := server.Serve(ln); err != nil {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	serviceManager := managers.NewServiceManager(mux)

	if err := serviceManager.RegisterServices(constants.ApiBasePath); err != nil {
		log.GetLogger().Fatal("Failed to register the services", log.Error(err))
	}

	return mux
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getWASHome() string {

	projectHome := ""
	projectHomeFlag := flag.String("wasHome", "", "Path to the analytics service home directory")
	flag.Parse()

	if *projectHomeFlag != "" {
		projectHome = *projectHomeFlag
	} else {
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			stdlog.Fatalf("Failed to get current working directory: %v", dirErr)
		}
		projectHome = dir
	}

	return projectHome
}
