package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/config"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/logging"
	"github.com/hackgods/hospital-portal/internal/view"
)

const (
	doctorCount  = 20
	patientCount = 50
)

type doctorSaver interface {
	Save(ctx context.Context, token string, doc gateway.NewDoctor) (gateway.Result, error)
}

type patientSigner interface {
	Signup(ctx context.Context, in gateway.PatientSignup) (gateway.Result, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config load error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.SeedAdminPass == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD is required")
	}
	logger.Info("seed starting", zap.String("backend_url", cfg.BackendURL))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gw := gateway.NewClient(cfg.BackendURL, gateway.WithTimeout(cfg.BackendTimeout), gateway.WithLogger(logger))

	login, err := gw.Admin.Login(ctx, gateway.AdminCredentials{Username: cfg.SeedAdminUser, Password: cfg.SeedAdminPass})
	if err != nil {
		logger.Fatal("admin login", zap.Error(err))
	}
	if !login.Success {
		logger.Fatal("admin login rejected", zap.String("message", login.Message))
	}

	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	n, err := seedDoctors(ctx, logger, gw.Doctors, login.Token, faker, doctorCount)
	if err != nil {
		logger.Fatal("seed doctors", zap.Error(err))
	}
	logger.Info("doctors seeded", zap.Int("count", n))

	n, err = seedPatients(ctx, logger, gw.Patients, faker, patientCount)
	if err != nil {
		logger.Fatal("seed patients", zap.Error(err))
	}
	logger.Info("patients seeded", zap.Int("count", n))

	logger.Info("seed complete")
}

func fakeDoctor(f *gofakeit.Faker) gateway.NewDoctor {
	slots := slices.Clone(view.StandardSlots)
	f.ShuffleStrings(slots)
	slots = slots[:f.Number(1, 3)]
	first, last := f.FirstName(), f.LastName()
	return gateway.NewDoctor{
		Name:           "Dr. " + first + " " + last,
		Email:          strings.ToLower(first+"."+last) + "@" + f.DomainName(),
		Phone:          f.Numerify("##########"),
		Password:       f.Password(true, true, true, false, false, 12),
		Specialty:      view.Specialties[f.Number(0, len(view.Specialties)-1)],
		AvailableTimes: slots,
	}
}

// seedDoctors registers count fake doctors. Rejected ones (usually a
// duplicate email) are logged and skipped.
func seedDoctors(ctx context.Context, logger *zap.Logger, doctors doctorSaver, token string, f *gofakeit.Faker, count int) (int, error) {
	saved := 0
	for i := 0; i < count; i++ {
		doc := fakeDoctor(f)
		res, err := doctors.Save(ctx, token, doc)
		if err != nil {
			return saved, fmt.Errorf("save doctor %d: %w", i, err)
		}
		if !res.Success {
			logger.Warn("doctor rejected", zap.String("email", doc.Email), zap.String("message", res.Message))
			continue
		}
		saved++
	}
	return saved, nil
}

func seedPatients(ctx context.Context, logger *zap.Logger, patients patientSigner, f *gofakeit.Faker, count int) (int, error) {
	saved := 0
	for i := 0; i < count; i++ {
		in := gateway.PatientSignup{
			Name:     f.Name(),
			Email:    f.Email(),
			Password: f.Password(true, true, true, false, false, 12),
			Phone:    f.Numerify("##########"),
			Address:  f.Address().Address,
		}
		res, err := patients.Signup(ctx, in)
		if err != nil {
			return saved, fmt.Errorf("signup patient %d: %w", i, err)
		}
		if !res.Success {
			logger.Warn("patient rejected", zap.String("email", in.Email), zap.String("message", res.Message))
			continue
		}
		saved++
	}
	return saved, nil
}
