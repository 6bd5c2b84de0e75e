package doctor

import (
	"context"
	"fmt"

	appconfig "github.com/doeshing/cmdgen/internal/application/config"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider   ports.ConfigProvider
	BackendFactory   ports.BackendFactory
	Validator        ports.SafetyValidator
	History          ports.HistoryStore
	ContextCollector ports.ContextCollector
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	if s.ConfigProvider == nil {
		return domain.HealthReport{}, domain.ErrMissingDependency.WithMessage("doctor.Service")
	}
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format %s, backend %s", cfg.ConfigFormatVersion, cfg.GetBackendName())))
	}

	checks = append(checks, s.backendCheck(ctx, cfg))
	checks = append(checks, s.policyCheck())
	checks = append(checks, s.historyCheck(ctx))

	if s.ContextCollector != nil {
		if osCtx, err := s.ContextCollector.Collect(ctx); err == nil {
			checks = append(checks, ok("Platform", osCtx.String()))
		} else {
			checks = append(checks, warn("Platform", err.Error()))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) backendCheck(ctx context.Context, cfg domain.Config) domain.HealthCheck {
	const name = "Backend"
	if s.BackendFactory == nil {
		return warn(name, "backend factory not initialized")
	}
	backend, err := s.BackendFactory.ForConfig(cfg)
	if err != nil {
		return fail(name, err.Error())
	}
	if backend.Name() == domain.BackendOffline {
		return warn(name, "offline keyword backend, suggestions are limited")
	}
	checker, isChecker := backend.(ports.HealthChecker)
	if !isChecker {
		return ok(name, fmt.Sprintf("%s configured with model %s (API key present)", backend.Name(), cfg.GetModel()))
	}
	probeCtx, cancel := context.WithTimeout(ctx, domain.DefaultProbeTimeout)
	defer cancel()
	if err := checker.Check(probeCtx); err != nil {
		return fail(name, fmt.Sprintf("%s unreachable: %v", backend.Name(), err))
	}
	return ok(name, fmt.Sprintf("%s reachable, model %s", backend.Name(), cfg.GetModel()))
}

// policyCheck proves the loaded rules still refuse a known-dangerous command.
func (s *Service) policyCheck() domain.HealthCheck {
	const name = "Safety policy"
	if s.Validator == nil {
		return warn(name, "validator not initialized")
	}
	if !s.Validator.Validate("ls").Accepted {
		return fail(name, "policy rejects a plain ls; check the whitelist")
	}
	if s.Validator.Validate("rm -rf /").Accepted {
		return fail(name, "policy accepts rm -rf /; check dangerous_patterns")
	}
	return ok(name, "rules loaded")
}

func (s *Service) historyCheck(ctx context.Context) domain.HealthCheck {
	const name = "History"
	if s.History == nil {
		return warn(name, "history store not initialized")
	}
	records, err := s.History.LoadAll(ctx)
	if err != nil {
		return fail(name, fmt.Sprintf("%s: %v", s.History.Path(), err))
	}
	return ok(name, fmt.Sprintf("%d records in %s", len(records), s.History.Path()))
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
