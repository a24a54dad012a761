// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/tasktrack/tasktrack-api/internal/core"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service     *Service
	validator   *validator.Validate
	defaultSize int
	maxSize     int
}

type HandlerOption func(*Handler)

// WithPageLimits overrides the default and maximum page size.
func WithPageLimits(defaultSize, maxSize int) HandlerOption {
	return func(h *Handler) {
		if maxSize > 0 {
			h.maxSize = maxSize
		}
		if defaultSize > 0 && defaultSize <= h.maxSize {
			h.defaultSize = defaultSize
		}
	}
}

func NewHandler(service *Service, opts ...HandlerOption) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	//nolint:errcheck // fails only on an empty tag or nil func
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	h := &Handler{
		service:     service,
		validator:   v,
		defaultSize: DefaultPageSize,
		maxSize:     MaxPageSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Get("/active", h.ListActive)
		r.Get("/role/{role}", h.ListByRole)
		r.Get("/username/{userName}", h.GetByUserName)
		r.Get("/email/{email}", h.GetByEmail)
		r.Get("/availability", h.Availability)
		r.Get("/search", h.Search)

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.SoftDelete)
		r.Put("/{id}/reactivate", h.Reactivate)
	})
}

// RegisterAdminRoutes mounts the operations that need an admin token.
// Hard delete lives only here.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAll)
		r.Get("/stats", h.Stats)
		r.Delete("/{id}", h.HardDelete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.Create(r.Context(), req.ToUser())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.Created(w, ToUserResponse(u))
}

// List serves one page. Out-of-range page and size values are clamped;
// an unknown sort property is rejected.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sort, err := ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	size := min(max(parseIntQuery(r, "size", h.defaultSize), 1), h.maxSize)
	req := PageRequest{
		Page: min(max(parseIntQuery(r, "page", 0), 0), MaxPage(size)),
		Size: size,
		Sort: sort,
	}

	page, err := h.service.ListPage(r.Context(), req)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToPagedResponse(page))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) GetByUserName(w http.ResponseWriter, r *http.Request) {
	userName, ok := pathString(w, r, "userName")
	if !ok {
		return
	}

	u, err := h.service.GetByUserName(r.Context(), userName)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email, ok := pathString(w, r, "email")
	if !ok {
		return
	}

	u, err := h.service.GetByEmail(r.Context(), email)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

// ListActive narrows to a single role when the role query is present.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	var (
		users []User
		err   error
	)

	if raw := r.URL.Query().Get("role"); raw != "" {
		role, perr := ParseRole(raw)
		if perr != nil {
			core.JSONError(w, r, perr)
			return
		}
		users, err = h.service.ListActiveByRole(r.Context(), role)
	} else {
		users, err = h.service.ListActive(r.Context())
	}
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) ListByRole(w http.ResponseWriter, r *http.Request) {
	raw, ok := pathString(w, r, "role")
	if !ok {
		return
	}

	role, err := ParseRole(raw)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	users, err := h.service.ListByRole(r.Context(), role)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	userName := r.URL.Query().Get("userName")
	email := r.URL.Query().Get("email")

	if userName == "" && email == "" {
		core.BadRequest(w, r, "userName or email query parameter is required")
		return
	}

	resp := AvailabilityResponse{UserName: userName, Email: email}

	if userName != "" {
		available, err := h.service.IsUserNameAvailable(r.Context(), userName)
		if err != nil {
			core.JSONError(w, r, err)
			return
		}
		resp.UserNameAvailable = &available
	}

	if email != "" {
		available, err := h.service.IsEmailAvailable(r.Context(), email)
		if err != nil {
			core.JSONError(w, r, err)
			return
		}
		resp.EmailAvailable = &available
	}

	core.OK(w, resp)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := SearchFilter{Name: strings.TrimSpace(q.Get("name"))}

	for key, dst := range map[string]**time.Time{
		"createdAfter":  &filter.CreatedAfter,
		"createdBefore": &filter.CreatedBefore,
	} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			core.BadRequest(w, r, fmt.Sprintf("%s must be an RFC 3339 timestamp", key))
			return
		}
		*dst = &t
	}

	users, err := h.service.Search(r.Context(), filter)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.Update(r.Context(), id, req.ToUser())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.service.SoftDelete(r.Context(), id)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Reactivate(r.Context(), id)
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListAll(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.OK(w, ToStatsResponse(stats))
}

func (h *Handler) HardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.HardDelete(r.Context(), id); err != nil {
		core.JSONError(w, r, err)
		return
	}

	core.NoContent(w)
}

// decode reads a single JSON object into dst and validates it. On failure
// the error response is already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		core.BadRequest(w, r, decodeMessage(err))
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.JSONError(w, r, core.ValidationError(core.FormatValidationError(err)))
		return false
	}

	return true
}

func decodeMessage(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("invalid value for field %q", typeErr.Field)
	case errors.As(err, &maxErr):
		return "request body too large"
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return strings.TrimPrefix(err.Error(), "json: ")
	default:
		return "invalid request body"
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		core.BadRequest(w, r, fmt.Sprintf("invalid user id: %q", raw))
		return 0, false
	}

	return id, true
}

// pathString decodes a path parameter. chi hands back the escaped segment
// when the request carried a percent-encoded path.
func pathString(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	raw := chi.URLParam(r, key)

	val, err := url.PathUnescape(raw)
	if err != nil {
		core.BadRequest(w, r, fmt.Sprintf("invalid %s: %q", key, raw))
		return "", false
	}

	return val, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
