package server

import (
	"errors"
	"log/slog"
	"math"
	"net/url"
	"strconv"

	"critique/internal/middleware"
	"critique/internal/models"
	"critique/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten means a helper already committed the response. Handlers
// return nil when they see it so the error handler does not overwrite it.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
	// keeps offset+limit far from int overflow when building page links
	maxPaginationOffset = math.MaxInt32
)

// parsePagination reads limit and offset, falling back to defaultLimit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	if offset > maxPaginationOffset {
		offset = maxPaginationOffset
	}

	return Pagination{Limit: limit, Offset: offset}
}

// pageOf wraps one page of results in the list envelope with links to the
// neighbouring pages.
func pageOf[T any](c *fiber.Ctx, p Pagination, total int64, results []T) models.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := models.Page[T]{Count: total, Results: results}
	if int64(p.Offset+p.Limit) < total {
		page.Next = pageLink(c, p.Limit, p.Offset+p.Limit)
	}
	if p.Offset > 0 {
		page.Previous = pageLink(c, p.Limit, max(p.Offset-p.Limit, 0))
	}
	return page
}

// pageLink rewrites the current URL's limit and offset, keeping other filters.
func pageLink(c *fiber.Ctx, limit, offset int) *string {
	q, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		q = url.Values{}
	}
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	link := c.BaseURL() + c.Path() + "?" + q.Encode()
	return &link
}

// parseID extracts a route parameter as a positive uint. On failure it writes
// a 404, since no object can live at a malformed id, and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Resource", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes the JSON body into dst, answering 400 when it is malformed.
func (s *Server) parseBody(c *fiber.Ctx, dst interface{}) error {
	return s.bindBody(c, dst, nil)
}

// bindBody decodes the body of a protected write. When the body is malformed,
// authorize runs first so access errors (401, 403, 404) win over the 400.
func (s *Server) bindBody(c *fiber.Ctx, dst interface{}, authorize func() error) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		if authorize != nil {
			if authErr := authorize(); authErr != nil {
				_ = s.respond(c, authErr)
				return errResponseWritten
			}
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// respond renders err with the status matching its code. Internal errors are logged.
func (s *Server) respond(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// currentUser is the user loaded by Authenticate, or nil for anonymous requests.
func currentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals("user").(*models.User)
	return u
}

// principal is the caller as seen by the access policy.
func principal(c *fiber.Ctx) policy.Principal {
	return policy.PrincipalOf(currentUser(c))
}
