// Package demo holds a sample annotated type used by the annotate CLI.
package demo

import (
	"fmt"

	"github.com/conduit-lang/annotate/runtime/decorator"
)

// Service is a toy service whose methods carry routing metadata.
type Service struct {
	Name string
}

// Run starts the service.
func (s *Service) Run() string {
	return fmt.Sprintf("%s running", s.Name)
}

// Stop stops the service.
func (s *Service) Stop() string {
	return fmt.Sprintf("%s stopped", s.Name)
}

// Health reports the service health.
func (s Service) Health() bool {
	return true
}

// Annotate tags the Service methods in r.
func Annotate(r *decorator.Registry) error {
	if err := r.Decorate((*Service)(nil), "Run",
		decorator.AddMetadata("owner", "team-a"),
		decorator.AddMetadata("version", 2),
		decorator.AddMetadata("route", "POST /service/run"),
	); err != nil {
		return err
	}

	if err := r.Decorate((*Service)(nil), "Stop",
		decorator.AddMetadata("owner", "team-a"),
		decorator.AddMetadata("route", "POST /service/stop"),
	); err != nil {
		return err
	}

	return r.Register(Service{}, "Health", "route", "GET /service/health")
}
