package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-availability/internal/config"
	"github.com/hackgods/clinic-availability/internal/db"
	"github.com/hackgods/clinic-availability/internal/logging"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BrowseRatio  float64
	BookingRatio float64
	EditRatio    float64
	PatientLimit int
	DoctorLimit  int
	PostgresDSN  string
}

// DataPool holds ids discovered before and during the run.
type DataPool struct {
	Patients []uuid.UUID
	Doctors  []uuid.UUID

	mu           sync.RWMutex
	bookable     []uuid.UUID
	appointments []uuid.UUID
}

func (dp *DataPool) SetBookable(ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.bookable = append(dp.bookable, ids...)
	if n := len(dp.bookable); n > 5000 {
		dp.bookable = dp.bookable[n-5000:]
	}
}

func (dp *DataPool) RandomBookable(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.bookable) == 0 {
		return uuid.Nil, false
	}
	return dp.bookable[rng.Intn(len(dp.bookable))], true
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) RandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case err == nil && status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Percentiles() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	latencies := append([]time.Duration(nil), om.latencies...)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	at := func(pct int) time.Duration {
		i := len(latencies) * pct / 100
		if i >= len(latencies) {
			i = len(latencies) - 1
		}
		return latencies[i]
	}
	return sum / time.Duration(len(latencies)), at(50), at(95), latencies[len(latencies)-1]
}

type Metrics struct {
	Availability OperationMetrics
	Booking      OperationMetrics
	Confirm      OperationMetrics
	Cancel       OperationMetrics
	DraftToggle  OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	logger  *zap.Logger
	metrics Metrics
}

func main() {
	_ = godotenv.Load()

	logger, err := logging.New(false, config.Getenv("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	logger.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("browse", cfg.BrowseRatio),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("edit", cfg.EditRatio),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, pgPool, cfg)
	if err != nil {
		logger.Fatal("load data pool", zap.Error(err))
	}
	logger.Info("data pool loaded",
		zap.Int("patients", len(dataPool.Patients)),
		zap.Int("doctors", len(dataPool.Doctors)),
	)

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	sim.Run()
	sim.PrintReport()
}

func loadConfig() (SimConfig, error) {
	cfg := SimConfig{
		APIBaseURL:   strings.TrimRight(config.Getenv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:     envDuration("SIM_DURATION", 30*time.Second),
		Workers:      envInt("SIM_WORKERS", 10),
		BrowseRatio:  envFloat("SIM_BROWSE_RATIO", 0.5),
		BookingRatio: envFloat("SIM_BOOKING_RATIO", 0.4),
		EditRatio:    envFloat("SIM_EDIT_RATIO", 0.1),
		PatientLimit: envInt("SIM_PATIENT_LIMIT", 4000),
		DoctorLimit:  envInt("SIM_DOCTOR_LIMIT", 200),
		PostgresDSN:  config.Getenv("POSTGRES_DSN", ""),
	}

	if cfg.PostgresDSN == "" {
		return cfg, fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return cfg, fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return cfg, fmt.Errorf("SIM_DURATION must be > 0")
	}

	// Normalize ratios
	total := cfg.BrowseRatio + cfg.BookingRatio + cfg.EditRatio
	if total > 0 {
		cfg.BrowseRatio /= total
		cfg.BookingRatio /= total
		cfg.EditRatio /= total
	}
	return cfg, nil
}

func loadDataPool(ctx context.Context, pool *pgxpool.Pool, cfg SimConfig) (*DataPool, error) {
	dp := &DataPool{}

	var err error
	dp.Patients, err = loadIDs(ctx, pool, `SELECT id FROM patients LIMIT $1`, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	dp.Doctors, err = loadIDs(ctx, pool, `
		SELECT DISTINCT doctor_id FROM schedules WHERE clinic_id IS NULL LIMIT $1
	`, cfg.DoctorLimit)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	if len(dp.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run cmd/seed first")
	}
	if len(dp.Doctors) == 0 {
		return nil, fmt.Errorf("no doctors with a general schedule, run cmd/seed first")
	}
	return dp, nil
}

func loadIDs(ctx context.Context, pool *pgxpool.Pool, query string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}
	wg.Wait()

	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BrowseRatio:
			s.doAvailability(ctx, rng)
		case r < s.config.BrowseRatio+s.config.BookingRatio:
			s.doBooking(ctx, rng)
		default:
			s.doDraftToggle(ctx, rng)
		}
	}
}

// doAvailability reads one doctor's next week and remembers bookable slots.
func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	doctorID := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]

	var body struct {
		Days []struct {
			Slots []struct {
				ID       uuid.UUID `json:"id"`
				Bookable bool      `json:"bookable"`
			} `json:"slots"`
		} `json:"days"`
	}
	latency, status, err := s.call(ctx, http.MethodGet, "/doctors/"+doctorID.String()+"/availability", nil, &body)
	s.metrics.Availability.Record(latency, status, err)
	if err != nil || status != http.StatusOK {
		return
	}

	var ids []uuid.UUID
	for _, d := range body.Days {
		for _, slot := range d.Slots {
			if slot.Bookable {
				ids = append(ids, slot.ID)
			}
		}
	}
	s.pool.SetBookable(ids)
}

// doBooking holds a slot and then confirms or cancels it.
func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	slotID, ok := s.pool.RandomBookable(rng)
	if !ok {
		s.doAvailability(ctx, rng)
		return
	}
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	latency, status, err := s.call(ctx, http.MethodPost, "/appointments", map[string]string{
		"slot_id":    slotID.String(),
		"patient_id": patientID.String(),
	}, &created)
	s.metrics.Booking.Record(latency, status, err)
	if err != nil || status != http.StatusCreated || created.ID == uuid.Nil {
		return
	}
	s.pool.AddAppointment(created.ID)

	apptID, ok := s.pool.RandomAppointment(rng)
	if !ok {
		return
	}
	if rng.Float64() < 0.8 {
		latency, status, err = s.call(ctx, http.MethodPost, "/appointments/"+apptID.String()+"/confirm", nil, nil)
		s.metrics.Confirm.Record(latency, status, err)
		return
	}
	latency, status, err = s.call(ctx, http.MethodPost, "/appointments/"+apptID.String()+"/cancel", nil, nil)
	s.metrics.Cancel.Record(latency, status, err)
}

// doDraftToggle contends on a doctor's general draft. Busy and conflict
// responses are expected under load.
func (s *Simulator) doDraftToggle(ctx context.Context, rng *rand.Rand) {
	doctorID := s.pool.Doctors[rng.Intn(len(s.pool.Doctors))]
	base := "/doctors/" + doctorID.String() + "/schedules/general/draft"

	var draft struct {
		Days []struct {
			Date  string            `json:"date"`
			Slots []json.RawMessage `json:"slots"`
		} `json:"days"`
	}
	if _, status, err := s.call(ctx, http.MethodGet, base, nil, &draft); err != nil || status != http.StatusOK || len(draft.Days) == 0 {
		return
	}
	day := draft.Days[rng.Intn(len(draft.Days))]
	if len(day.Slots) == 0 {
		return
	}

	path := fmt.Sprintf("%s/days/%s/slots/%d/toggle", base, day.Date, rng.Intn(len(day.Slots)))
	latency, status, err := s.call(ctx, http.MethodPost, path, nil, nil)
	s.metrics.DraftToggle.Record(latency, status, err)
}

func (s *Simulator) call(ctx context.Context, method, path string, in, out any) (time.Duration, int, error) {
	var body *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, 0, err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, body)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return latency, resp.StatusCode, err
		}
	}
	return latency, resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n\n", s.config.Workers)

	printOperationReport("Availability", &s.metrics.Availability)
	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Draft toggle", &s.metrics.DraftToggle)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}
	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)
	avg, p50, p95, max := om.Percentiles()

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, pct(success))
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), max.Round(time.Millisecond))
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(config.Getenv(key, "")); err == nil {
		return d
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(config.Getenv(key, "")); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(config.Getenv(key, ""), 64); err == nil {
		return f
	}
	return def
}
