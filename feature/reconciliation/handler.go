package reconciliation

import (
	"errors"

	"collection-reconciler/core/logger"
	"collection-reconciler/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)
	app.Get("/collections", h.HandleListCollections)

	group := app.Group("/reconcile")
	group.Get("/:collection", h.HandleReconcileCollection)
	group.Post("/", h.HandleReconcileMany)
}

// ReconcileRequest is the body of POST /reconcile.
type ReconcileRequest struct {
	Collections []string `json:"collections"`
}

// ReconcileResponse is the body returned by POST /reconcile.
type ReconcileResponse struct {
	Summaries []reconcile.Summary `json:"summaries"`
	Results   []*reconcile.Result `json:"results"`
}

// HandleHealth reports whether both databases are reachable.
// @Summary Health Check
// @Description Pings the source and target databases. Does not require an API key.
// @Tags reconciliation
// @Produce json
// @Success 200 {object} map[string]string "Both databases reachable"
// @Failure 503 {object} map[string]string "A database is unreachable"
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	if err := h.service.Health(c.UserContext()); err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleListCollections returns the configured collections.
// @Summary List Collections
// @Description Returns the collections configured for reconciliation.
// @Tags reconciliation
// @Produce json
// @Success 200 {array} reconcile.CollectionSpec "Configured collections"
// @Router /collections [get]
func (h *Handler) HandleListCollections(c *fiber.Ctx) error {
	return c.JSON(h.service.Collections())
}

// HandleReconcileCollection reconciles a single collection.
// @Summary Reconcile Collection
// @Description Compares one collection between the source and target databases.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param refresh query boolean false "Drop the cached snapshot first"
// @Success 200 {object} reconcile.Result "Reconciliation Result"
// @Failure 404 {object} map[string]string "Unknown collection"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile/{collection} [get]
func (h *Handler) HandleReconcileCollection(c *fiber.Ctx) error {
	name := c.Params("collection")
	l := logger.WithRayID(h.service.logger, c).With(zap.String("collection", name))

	result, err := h.service.Reconcile(c.UserContext(), name, c.QueryBool("refresh"))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(result)
}

// HandleReconcileMany reconciles the requested collections, or all of them
// when the body is empty.
// @Summary Reconcile Collections
// @Description Compares the collections named in the body, or every configured collection.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body ReconcileRequest false "Collections to reconcile"
// @Success 200 {object} ReconcileResponse "Summaries and Results"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 404 {object} map[string]string "Unknown collection"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconcile [post]
func (h *Handler) HandleReconcileMany(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	results, err := h.service.ReconcileMany(c.UserContext(), req.Collections)
	if err != nil {
		return h.fail(c, l, err)
	}

	resp := ReconcileResponse{
		Summaries: make([]reconcile.Summary, len(results)),
		Results:   results,
	}
	for i, r := range results {
		resp.Summaries[i] = r.Summary()
	}
	return c.JSON(resp)
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	if errors.Is(err, ErrUnknownCollection) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	l.Error("Reconciliation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
