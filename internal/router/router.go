package router

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"kvops-api/internal/store"
)

// Operation names in the action catalogue
const (
	OpCreate = "create"
	OpRead   = "read"
	OpUpdate = "update"
	OpDelete = "delete"
	OpList   = "list"
	OpEcho   = "echo"
	OpPing   = "ping"
)

// PingResponse is the fixed acknowledgment returned by the ping operation
const PingResponse = "pong"

// Request is the JSON envelope every invocation carries. Payload is opaque
// to the router; only the selected action reads it.
type Request struct {
	Operation string                 `json:"operation" validate:"required"`
	TableName string                 `json:"tableName,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Action is one entry in the catalogue: a named effect applied to a payload
// against a lazily bound collection handle.
type Action struct {
	Name  string
	Apply func(ctx context.Context, tbl store.Table, payload map[string]interface{}) (interface{}, error)
}

// Router dispatches requests to the fixed action catalogue. Its only state
// is the catalogue and the store handle, both set at construction and never
// mutated, so a single Router serves concurrent invocations.
type Router struct {
	store    store.Store
	actions  map[string]Action
	validate *validator.Validate
	logger   *logrus.Logger
}

// New creates a new operation router over the given store
func New(st store.Store, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}

	r := &Router{
		store:    st,
		validate: validator.New(),
		logger:   logger,
	}

	r.actions = map[string]Action{
		OpCreate: {Name: OpCreate, Apply: r.create},
		OpRead:   {Name: OpRead, Apply: r.read},
		OpUpdate: {Name: OpUpdate, Apply: r.update},
		OpDelete: {Name: OpDelete, Apply: r.delete},
		OpList:   {Name: OpList, Apply: r.list},
		OpEcho:   {Name: OpEcho, Apply: r.echo},
		OpPing:   {Name: OpPing, Apply: r.ping},
	}

	return r
}

// Operations lists the catalogue's operation names
func (r *Router) Operations() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

// Handle validates the envelope, selects the action by name, and applies it.
// The collection handle is bound lazily from TableName without validation;
// a bad or absent table name surfaces as a store error only if the action
// actually issues a store call. Store errors propagate unchanged.
func (r *Router) Handle(ctx context.Context, req *Request) (interface{}, error) {
	if req == nil {
		return nil, ErrMissingOperation
	}
	if err := r.validate.Struct(req); err != nil {
		// Operation is the only validated field
		return nil, ErrMissingOperation
	}

	action, ok := r.actions[req.Operation]
	if !ok {
		return nil, &UnknownOperationError{Name: req.Operation}
	}

	r.logger.WithFields(logrus.Fields{
		"operation": action.Name,
		"table":     req.TableName,
	}).Debug("Dispatching operation")

	tbl := r.store.Table(req.TableName)
	return action.Apply(ctx, tbl, req.Payload)
}
