package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-availability/internal/config"
	"github.com/hackgods/clinic-availability/internal/db"
	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/logging"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

type seeder struct {
	dir    *directory.Service
	repo   schedule.Repository
	logger *zap.Logger
	today  civil.Date
}

func main() {
	_ = godotenv.Load()

	logger, err := logging.New(false, config.Getenv("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	dsn := config.Getenv("POSTGRES_DSN", "")
	if dsn == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, db.PoolOptions{MaxConns: 4})
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	if seed, err := strconv.ParseUint(config.Getenv("SEED", ""), 10, 64); err == nil {
		gofakeit.Seed(int64(seed))
	}

	s := &seeder{
		dir:    directory.NewService(directory.NewPgRepository(pool)),
		repo:   schedule.NewPgRepository(pool),
		logger: logger,
		today:  civil.DateOf(time.Now()),
	}

	clinics, err := s.seedClinics(ctx, envInt("SEED_CLINICS", 10))
	if err != nil {
		logger.Fatal("seed clinics", zap.Error(err))
	}
	if err := s.seedDoctors(ctx, envInt("SEED_DOCTORS", 100), clinics); err != nil {
		logger.Fatal("seed doctors", zap.Error(err))
	}
	if err := s.seedPatients(ctx, envInt("SEED_PATIENTS", 2000)); err != nil {
		logger.Fatal("seed patients", zap.Error(err))
	}

	logger.Info("seed complete")
}

func (s *seeder) seedClinics(ctx context.Context, count int) ([]uuid.UUID, error) {
	s.logger.Info("seeding clinics", zap.Int("count", count))

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		addr := gofakeit.Address()
		c, err := s.dir.CreateClinic(ctx, directory.CreateClinicInput{
			Name:    gofakeit.Company() + " Clinic",
			Address: addr.Address,
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// seedDoctors creates doctors, affiliates each with up to two clinics and
// stamps a month of weekday schedules onto the general scope and every
// clinic scope.
func (s *seeder) seedDoctors(ctx context.Context, count int, clinics []uuid.UUID) error {
	s.logger.Info("seeding doctors", zap.Int("count", count))

	for i := 0; i < count; i++ {
		d, err := s.dir.CreateDoctor(ctx, directory.CreateDoctorInput{
			Name:      "Dr. " + gofakeit.Name(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
		})
		if err != nil {
			return err
		}

		if err := s.seedSchedule(ctx, d.ID, schedule.General); err != nil {
			return err
		}

		for _, clinicID := range pickClinics(clinics, gofakeit.Number(0, 2)) {
			fee := int64(gofakeit.Number(20, 150)) * 100
			if _, err := s.dir.Affiliate(ctx, d.ID, clinicID, fee); err != nil {
				return err
			}
			if err := s.seedSchedule(ctx, d.ID, schedule.ClinicScope(clinicID)); err != nil {
				return err
			}
		}

		if (i+1)%20 == 0 {
			s.logger.Info("doctors seeded", zap.Int("done", i+1), zap.Int("total", count))
		}
	}
	return nil
}

func (s *seeder) seedSchedule(ctx context.Context, doctorID uuid.UUID, scope schedule.Scope) error {
	end := s.today.AddDays(27)
	rng, err := schedule.ComputeRange(s.today, schedule.RangeSpan, &end)
	if err != nil {
		return err
	}

	// Two or three working weekdays, Monday to Friday.
	days := []int{1, 2, 3, 4, 5}
	gofakeit.ShuffleInts(days)
	var weekdays []time.Weekday
	for _, n := range days[:gofakeit.Number(2, 3)] {
		weekdays = append(weekdays, time.Weekday(n))
	}

	var c schedule.Collection
	c.Apply(schedule.Recurrence{
		Anchor:   s.today,
		Range:    rng,
		Weekdays: weekdays,
		Template: schedule.DefaultTemplate(),
		Today:    s.today,
	})

	stored, err := s.repo.GetSchedule(ctx, doctorID, scope)
	if err != nil {
		return err
	}
	_, err = s.repo.ReplaceSchedule(ctx, doctorID, scope, stored.Version, c.Days)
	return err
}

func (s *seeder) seedPatients(ctx context.Context, count int) error {
	s.logger.Info("seeding patients", zap.Int("count", count))

	created := 0
	for created < count {
		_, err := s.dir.CreatePatient(ctx, directory.CreatePatientInput{
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
			Phone: gofakeit.Phone(),
		})
		if errors.Is(err, directory.ErrPatientExists) {
			continue
		}
		if err != nil {
			return err
		}
		created++

		if created%500 == 0 {
			s.logger.Info("patients seeded", zap.Int("done", created), zap.Int("total", count))
		}
	}
	return nil
}

func pickClinics(clinics []uuid.UUID, n int) []uuid.UUID {
	if n > len(clinics) {
		n = len(clinics)
	}
	idx := indexes(len(clinics))
	gofakeit.ShuffleInts(idx)
	out := make([]uuid.UUID, 0, n)
	for _, i := range idx[:n] {
		out = append(out, clinics[i])
	}
	return out
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(config.Getenv(key, "")); err == nil && n >= 0 {
		return n
	}
	return def
}
