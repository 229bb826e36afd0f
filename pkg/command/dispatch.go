package command

import (
	"io"
	"log"
	"time"

	"github.com/marjoballabani/lazya2l/pkg/calib"
	"github.com/marjoballabani/lazya2l/pkg/elfsym"
	"github.com/marjoballabani/lazya2l/pkg/store"
)

// Dispatcher executes requests against a store.
type Dispatcher struct {
	store   *store.Store
	metrics *Metrics
	logger  *log.Logger
}

// NewDispatcher creates a dispatcher. Metrics and logger may be nil.
func NewDispatcher(s *store.Store, metrics *Metrics, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Dispatcher{store: s, metrics: metrics, logger: logger}
}

// Handle runs req and returns its result. Every error it returns is a
// *calib.Error.
func (d *Dispatcher) Handle(req Request) (any, error) {
	if req == nil {
		return nil, calib.Errorf(calib.CodeValidation, "no request")
	}
	start := time.Now()
	result, err := d.handle(req)
	if err != nil {
		ce := calib.AsError(err)
		d.logger.Printf("command: %s failed: %v", req.Command(), ce)
		d.metrics.observe(req.Command(), ce.Code, time.Since(start))
		return nil, ce
	}
	d.metrics.observe(req.Command(), "", time.Since(start))
	return result, nil
}

func (d *Dispatcher) handle(req Request) (any, error) {
	switch r := req.(type) {
	case OpenContent:
		return d.store.OpenContent(r.Name, r.Content)
	case OpenFile:
		return d.store.OpenFile(r.Path)
	case CreateEmpty:
		return d.store.CreateEmpty(), nil
	case GetProjection:
		return d.store.Projection(store.ProjectionOptions{ItemLimit: r.ItemLimit})
	case GetSectionItems:
		return d.store.SectionItems(r.Section, r.Offset, r.Limit)
	case GetEntity:
		e, err := d.store.GetEntity(r.Container, r.Kind, r.Name)
		if err != nil {
			return nil, err
		}
		return calib.EntityValue{Entity: e}, nil
	case UpdateEntity:
		return nil, d.store.UpdateEntity(r.Container, r.Kind, r.Name, r.Entity.Entity)
	case UpdateProject:
		return d.store.UpdateProject(r.Name, r.LongIdentifier, r.HeaderComment)
	case UpdateModule:
		return d.store.UpdateModule(r.Name, r.NewName, r.LongIdentifier)
	case Export:
		return d.store.Export()
	case SaveFile:
		return nil, d.store.Save(r.Path)
	case LoadSymbols:
		return elfsym.Load(r.Path)
	case MergeSymbols:
		return d.store.MergeSymbols(r.Container, r.Symbols)
	}
	return nil, calib.Errorf(calib.CodeInternal, "unhandled request %T", req)
}
