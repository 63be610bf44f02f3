package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"quantcasa/internal/api"
	"quantcasa/internal/config"
	"quantcasa/internal/engine"
	"quantcasa/internal/ingest"
	"quantcasa/internal/notification"
	"quantcasa/internal/processor"
	memoryqueue "quantcasa/internal/queue/memory"
	filestor "quantcasa/internal/store/file"
	memorystor "quantcasa/internal/store/memory"
)

// stack is the assembled memory-mode service under test.
type stack struct {
	server *api.Server
	engine *engine.Engine
	cancel context.CancelFunc
	done   chan struct{}
}

// newStack wires the memory-mode service: file snapshots, in-memory queue
// and notification state, and a running processor goroutine.
func newStack(snapshotPath string) *stack {
	logger := slog.New(slog.DiscardHandler)

	snapshots := filestor.NewSnapshotStore(snapshotPath, logger)
	dispatcher := notification.NewDispatcher(
		memorystor.NewNotificationStateStore(),
		&notification.StaticPrompter{Result: notification.PermissionGranted},
		notification.NewSlogSink(logger),
		logger,
	)
	eng := engine.NewEngine(memorystor.NewAlertRepository(), snapshots, dispatcher, logger)

	msgQueue := memoryqueue.NewQueue(100)
	ingestService := ingest.NewService(msgQueue, logger)
	processorService := processor.NewService(msgQueue, eng, logger)

	serverCfg := &config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  5 * time.Second,
	}

	server := api.NewServer(api.ServerDeps{
		Config:              serverCfg,
		Logger:              logger,
		AlertHandler:        api.NewAlertHandler(eng, logger),
		ObservationHandler:  api.NewObservationHandler(ingestService, logger),
		NotificationHandler: api.NewNotificationHandler(eng, logger),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = processorService.Start(ctx)
	}()

	return &stack{server: server, engine: eng, cancel: cancel, done: done}
}

func (s *stack) stop() {
	s.cancel()
	<-s.done
}

// request performs an in-process HTTP request against the Fiber app.
func (s *stack) request(method, path string, body interface{}) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	Expect(err).NotTo(HaveOccurred())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.App().Test(req, 5000)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

// parseData decodes the response envelope and returns its data payload.
func parseData(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()

	var envelope map[string]interface{}
	Expect(json.NewDecoder(resp.Body).Decode(&envelope)).To(Succeed())

	data, _ := envelope["data"].(map[string]interface{})
	return data
}

var _ = Describe("Alert Lifecycle", Ordered, func() {
	var (
		s            *stack
		snapshotPath string
		alertID      string
	)

	BeforeAll(func() {
		snapshotPath = filepath.Join(GinkgoT().TempDir(), "alerts.json")
		s = newStack(snapshotPath)
		Expect(s.engine.Load(context.Background())).To(Succeed())
	})

	AfterAll(func() {
		s.stop()
	})

	It("responds healthy", func() {
		resp := s.request("GET", "/healthz", nil)
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("creates an alert", func() {
		resp := s.request("POST", "/v1/alerts", map[string]interface{}{
			"label":        "2BHK Wagholi, Pune",
			"city":         "Pune",
			"area":         "Wagholi",
			"mode":         "buy",
			"condition":    "below",
			"target_price": 7500000,
			"notify":       true,
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		data := parseData(resp)
		alertID = data["id"].(string)
		Expect(alertID).NotTo(BeEmpty())
		Expect(data["status"]).To(Equal("active"))
	})

	It("rejects an invalid alert", func() {
		resp := s.request("POST", "/v1/alerts", map[string]interface{}{
			"city":         "Pune",
			"mode":         "buy",
			"condition":    "below",
			"target_price": 7500000,
		})
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("accepts an observation above the target without triggering", func() {
		resp := s.request("POST", "/v1/observations", map[string]interface{}{
			"city":  "pune",
			"area":  "wagholi",
			"mode":  "buy",
			"price": 7800000,
		})
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		Eventually(func() interface{} {
			resp := s.request("GET", "/v1/alerts/"+alertID, nil)
			return parseData(resp)["last_known_price"]
		}, 2*time.Second, 50*time.Millisecond).Should(BeNumerically("==", 7800000))

		resp = s.request("GET", "/v1/alerts/"+alertID, nil)
		Expect(parseData(resp)["status"]).To(Equal("active"))
	})

	It("triggers the alert on a boundary price", func() {
		resp := s.request("POST", "/v1/observations", map[string]interface{}{
			"city":  "Pune",
			"area":  "Wagholi",
			"mode":  "buy",
			"price": 7500000,
		})
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		Eventually(func() interface{} {
			resp := s.request("GET", "/v1/alerts/"+alertID, nil)
			return parseData(resp)["status"]
		}, 2*time.Second, 50*time.Millisecond).Should(Equal("triggered"))

		resp = s.request("GET", "/v1/alerts/"+alertID, nil)
		data := parseData(resp)
		Expect(data["trigger_count"]).To(BeNumerically("==", 1))
		// The pre-trigger baseline is preserved for display.
		Expect(data["last_known_price"]).To(BeNumerically("==", 7800000))
	})

	It("reports stats", func() {
		resp := s.request("GET", "/v1/alerts/stats", nil)
		data := parseData(resp)
		Expect(data["triggered"]).To(BeNumerically("==", 1))
	})

	It("resets the alert and preserves its history", func() {
		resp := s.request("POST", "/v1/alerts/"+alertID+"/reset", nil)
		data := parseData(resp)
		Expect(data["status"]).To(Equal("active"))
		Expect(data["trigger_count"]).To(BeNumerically("==", 1))
	})

	It("pauses and resumes via toggle", func() {
		resp := s.request("POST", "/v1/alerts/"+alertID+"/toggle", nil)
		Expect(parseData(resp)["status"]).To(Equal("paused"))

		resp = s.request("POST", "/v1/alerts/"+alertID+"/toggle", nil)
		Expect(parseData(resp)["status"]).To(Equal("active"))
	})

	It("clears triggered alerts", func() {
		// Re-trigger, then clear.
		resp := s.request("POST", "/v1/observations", map[string]interface{}{
			"city":  "Pune",
			"area":  "Wagholi",
			"mode":  "buy",
			"price": 7400000,
		})
		resp.Body.Close()

		Eventually(func() interface{} {
			resp := s.request("GET", "/v1/alerts/"+alertID, nil)
			return parseData(resp)["status"]
		}, 2*time.Second, 50*time.Millisecond).Should(Equal("triggered"))

		resp = s.request("DELETE", "/v1/alerts/triggered", nil)
		Expect(parseData(resp)["removed"]).To(BeNumerically("==", 1))

		resp = s.request("GET", "/v1/alerts/"+alertID, nil)
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("survives a restart through the snapshot", func() {
		resp := s.request("POST", "/v1/alerts", map[string]interface{}{
			"label":        "3BHK Baner, Pune",
			"city":         "Pune",
			"area":         "Baner",
			"mode":         "buy",
			"condition":    "above",
			"target_price": 12000000,
		})
		data := parseData(resp)
		persistedID := data["id"].(string)

		// Bring up a fresh stack over the same snapshot file.
		s.stop()
		s = newStack(snapshotPath)
		Expect(s.engine.Load(context.Background())).To(Succeed())

		resp = s.request("GET", "/v1/alerts/"+persistedID, nil)
		restored := parseData(resp)
		Expect(restored["label"]).To(Equal("3BHK Baner, Pune"))
		Expect(restored["status"]).To(Equal("active"))
	})

	It("resolves the notification permission idempotently", func() {
		resp := s.request("POST", "/v1/notifications/permission", nil)
		Expect(parseData(resp)["permission"]).To(Equal("granted"))

		resp = s.request("POST", "/v1/notifications/permission", nil)
		Expect(parseData(resp)["permission"]).To(Equal("granted"))
	})
})
