package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campstack/evalboard-backend/internal/client"
	"github.com/campstack/evalboard-backend/internal/client/localstore"
	"github.com/campstack/evalboard-backend/internal/platform/envutil"
	"github.com/campstack/evalboard-backend/internal/platform/logger"
)

// stationagent is a terminal front-end for entering ratings at a camp
// station. Edits auto-save in the background; lost connectivity parks
// them in a local sqlite queue until the backend is reachable again.
//
// Commands (stdin, one per line):
//	rate <kid-id> <question-id> <1-5>
//	comment <kid-id> <question-id> <text...>
//	save
//	online | offline
//	quit

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	leaderID, err := uuid.Parse(envutil.GetEnv("LEADER_ID", "", log))
	if err != nil {
		log.Error("LEADER_ID must be a valid uuid", "error", err)
		os.Exit(1)
	}
	baseURL := envutil.GetEnv("API_BASE_URL", "http://localhost:8080", log)
	storePath := envutil.GetEnv("LOCALSTORE_PATH", "stationagent.db", log)
	intervalSeconds := envutil.GetEnvAsInt("AUTOSAVE_INTERVAL_SECONDS", 30, log)
	timeoutSeconds := envutil.GetEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10, log)

	store, err := localstore.Open(storePath, log)
	if err != nil {
		log.Error("Could not open local store", "path", storePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	api := client.New(baseURL, time.Duration(timeoutSeconds)*time.Second, log)
	session := client.NewSession(client.SessionConfig{
		LeaderID: leaderID,
		Interval: time.Duration(intervalSeconds) * time.Second,
		API:      api,
		Store:    store,
		Log:      log,
	})
	session.Start(context.Background())
	defer session.Stop()

	fmt.Println("stationagent ready")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "rate":
			if len(fields) != 4 {
				fmt.Println("usage: rate <kid-id> <question-id> <rating>")
				continue
			}
			kidID, kidErr := uuid.Parse(fields[1])
			questionID, qErr := uuid.Parse(fields[2])
			rating, rErr := strconv.Atoi(fields[3])
			if kidErr != nil || qErr != nil || rErr != nil {
				fmt.Println("rate: invalid arguments")
				continue
			}
			session.SetRating(kidID, questionID, rating)
		case "comment":
			if len(fields) < 4 {
				fmt.Println("usage: comment <kid-id> <question-id> <text>")
				continue
			}
			kidID, kidErr := uuid.Parse(fields[1])
			questionID, qErr := uuid.Parse(fields[2])
			if kidErr != nil || qErr != nil {
				fmt.Println("comment: invalid arguments")
				continue
			}
			session.SetComment(kidID, questionID, strings.Join(fields[3:], " "))
		case "save":
			if err := session.Save(context.Background()); err != nil {
				fmt.Printf("save failed: %v (queued for retry)\n", err)
				continue
			}
			fmt.Println("saved")
		case "online":
			session.NotifyConnectivity(true)
		case "offline":
			session.NotifyConnectivity(false)
		case "quit":
			return
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}
