package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/playtaste/playtaste"
	"github.com/playtaste/playtaste/application/service"
	"github.com/playtaste/playtaste/domain/task"
	"github.com/playtaste/playtaste/infrastructure/api/jsonapi"
	"github.com/playtaste/playtaste/infrastructure/api/middleware"
)

// QueueRouter exposes the pending background task queue, read-only.
type QueueRouter struct {
	client     *playtaste.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewQueueRouter creates a new QueueRouter.
func NewQueueRouter(client *playtaste.Client) *QueueRouter {
	return &QueueRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for queue endpoints.
func (r *QueueRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)

	return router
}

// List handles GET /api/v1/queue.
// The optional operation query parameter filters by task operation.
func (r *QueueRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var params service.TaskListParams
	if raw := req.URL.Query().Get("operation"); raw != "" {
		op := task.Operation(raw)
		params.Operation = &op
	}

	tasks, err := r.client.Tasks.List(ctx, &params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewListResponse(r.serializer.TaskResources(tasks))
	doc.Meta = &jsonapi.Meta{"total_count": int64(len(tasks))}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// Get handles GET /api/v1/queue/{id}.
func (r *QueueRouter) Get(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Tasks.Get(ctx, id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.TaskResource(t)))
}
