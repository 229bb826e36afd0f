package command

import (
	"context"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// Channel carries requests to a store and returns their results. Do blocks
// until the result arrives or ctx is done. Errors from the store are
// *calib.Error values.
type Channel interface {
	Do(ctx context.Context, req Request) (any, error)
}

// Local runs requests in process. Each call runs on its own goroutine so a
// caller can stop waiting when ctx is cancelled; the store still finishes
// the command.
type Local struct {
	d *Dispatcher
}

// NewLocal creates an in-process channel.
func NewLocal(d *Dispatcher) *Local {
	return &Local{d: d}
}

type outcome struct {
	result any
	err    error
}

// Do implements Channel.
func (l *Local) Do(ctx context.Context, req Request) (any, error) {
	done := make(chan outcome, 1)
	go func() {
		result, err := l.d.Handle(req)
		done <- outcome{result, err}
	}()
	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Client is a typed view over a Channel.
type Client struct {
	ch Channel
}

// NewClient wraps ch.
func NewClient(ch Channel) *Client {
	return &Client{ch: ch}
}

func call[T any](ctx context.Context, ch Channel, req Request) (T, error) {
	var zero T
	result, err := ch.Do(ctx, req)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	v, ok := result.(T)
	if !ok {
		return zero, calib.Errorf(calib.CodeInternal, "%s returned %T, want %T", req.Command(), result, zero)
	}
	return v, nil
}

func (c *Client) OpenContent(ctx context.Context, name, content string) (calib.Metadata, error) {
	return call[calib.Metadata](ctx, c.ch, OpenContent{Name: name, Content: content})
}

func (c *Client) OpenFile(ctx context.Context, path string) (calib.Metadata, error) {
	return call[calib.Metadata](ctx, c.ch, OpenFile{Path: path})
}

func (c *Client) CreateEmpty(ctx context.Context) (calib.Metadata, error) {
	return call[calib.Metadata](ctx, c.ch, CreateEmpty{})
}

func (c *Client) Projection(ctx context.Context, itemLimit int) ([]calib.Container, error) {
	return call[[]calib.Container](ctx, c.ch, GetProjection{ItemLimit: itemLimit})
}

func (c *Client) SectionItems(ctx context.Context, section calib.SectionID, offset, limit int) (calib.SectionPage, error) {
	return call[calib.SectionPage](ctx, c.ch, GetSectionItems{Section: section, Offset: offset, Limit: limit})
}

// Entity fetches the record for id.
func (c *Client) Entity(ctx context.Context, id calib.ItemID) (calib.Entity, error) {
	v, err := call[calib.EntityValue](ctx, c.ch, GetEntity{Container: id.Container, Kind: id.Kind, Name: id.Name})
	if err != nil {
		return nil, err
	}
	if v.Entity == nil {
		return nil, calib.Errorf(calib.CodeEntityNotFound, "%s not found", id)
	}
	return v.Entity, nil
}

// UpdateEntity replaces the entity identified by id with e.
func (c *Client) UpdateEntity(ctx context.Context, id calib.ItemID, e calib.Entity) error {
	_, err := c.ch.Do(ctx, UpdateEntity{Container: id.Container, Kind: id.Kind, Name: id.Name, Entity: calib.EntityValue{Entity: e}})
	return err
}

func (c *Client) UpdateProject(ctx context.Context, name, longIdentifier string, headerComment *string) (calib.Metadata, error) {
	return call[calib.Metadata](ctx, c.ch, UpdateProject{Name: name, LongIdentifier: longIdentifier, HeaderComment: headerComment})
}

// UpdateModule renames module name to newName and sets its long identifier.
func (c *Client) UpdateModule(ctx context.Context, name, newName, longIdentifier string) (calib.Metadata, error) {
	return call[calib.Metadata](ctx, c.ch, UpdateModule{Name: name, NewName: newName, LongIdentifier: longIdentifier})
}

func (c *Client) Export(ctx context.Context) (string, error) {
	return call[string](ctx, c.ch, Export{})
}

func (c *Client) Save(ctx context.Context, path string) error {
	_, err := c.ch.Do(ctx, SaveFile{Path: path})
	return err
}

func (c *Client) LoadSymbols(ctx context.Context, path string) ([]calib.ImportSymbol, error) {
	return call[[]calib.ImportSymbol](ctx, c.ch, LoadSymbols{Path: path})
}

func (c *Client) MergeSymbols(ctx context.Context, container string, symbols []calib.ImportSymbol) (calib.MergeResult, error) {
	return call[calib.MergeResult](ctx, c.ch, MergeSymbols{Container: container, Symbols: symbols})
}
