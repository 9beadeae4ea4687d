package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/modelgate/dispatch"
	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/model"
	"github.com/kbukum/modelgate/observability"
)

// Catalog is the registry surface the API reads.
type Catalog interface {
	Lookup(name string) (model.Model, error)
	Names() []string
}

// versioned is implemented by adapters that expose their upstream model id.
type versioned interface {
	Version() string
}

// ModelView is the JSON shape of a registered model.
type ModelView struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Version     string             `json:"version,omitempty"`
	Parameters  model.ParameterSet `json:"parameters"`
}

// ExecuteResponse is returned by POST /v1/execute.
type ExecuteResponse struct {
	Model      string `json:"model"`
	Capability string `json:"capability"`
	Text       string `json:"text"`
	DurationMS int64  `json:"duration_ms"`
}

// ExecuteJSONResponse is returned by POST /v1/execute/json.
type ExecuteJSONResponse struct {
	Model      string `json:"model"`
	Capability string `json:"capability"`
	Data       any    `json:"data"`
	DurationMS int64  `json:"duration_ms"`
}

// API serves the model registry and dispatch over HTTP.
type API struct {
	dispatcher   *dispatch.Dispatcher
	catalog      Catalog
	service      string
	version      string
	defaultModel string
}

// NewAPI creates the handlers. defaultModel is used when an execute request
// names no model.
func NewAPI(d *dispatch.Dispatcher, c Catalog, service, version, defaultModel string) *API {
	return &API{dispatcher: d, catalog: c, service: service, version: version, defaultModel: defaultModel}
}

// Register mounts the routes on r.
func (a *API) Register(r gin.IRouter) {
	r.GET("/health", a.health)

	v1 := r.Group("/v1")
	v1.GET("/models", a.listModels)
	v1.GET("/models/:name", a.getModel)
	v1.PUT("/models/:name/parameters", a.updateParameters)
	v1.GET("/capabilities", a.capabilities)
	v1.POST("/execute", a.execute)
	v1.POST("/execute/json", a.executeJSON)
}

func (a *API) health(c *gin.Context) {
	sh := observability.NewServiceHealth(a.service, a.version)
	down := 0
	names := a.catalog.Names()
	for _, name := range names {
		m, err := a.catalog.Lookup(name)
		if err != nil {
			continue
		}
		h := observability.Health{Name: name, Status: observability.HealthStatusUp}
		if hc, ok := m.(observability.HealthChecker); ok {
			h = hc.CheckHealth(c.Request.Context())
		}
		if h.Status == observability.HealthStatusDown {
			down++
		}
		sh.AddComponent(h)
	}

	status := http.StatusOK
	if len(names) > 0 && down == len(names) {
		sh.Status = observability.HealthStatusDown
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}

func (a *API) listModels(c *gin.Context) {
	names := a.catalog.Names()
	views := make([]ModelView, 0, len(names))
	for _, name := range names {
		m, err := a.catalog.Lookup(name)
		if err != nil {
			continue
		}
		views = append(views, viewOf(m))
	}
	RespondOK(c, views)
}

func (a *API) getModel(c *gin.Context) {
	m, err := a.catalog.Lookup(c.Param("name"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, viewOf(m))
}

// updateParameters merges the body into the model's stored parameters.
// Fields absent from the body keep their value.
func (a *API) updateParameters(c *gin.Context) {
	m, err := a.catalog.Lookup(c.Param("name"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	var override model.ParameterSet
	if err := json.NewDecoder(c.Request.Body).Decode(&override); err != nil {
		if errors.IsAppError(err) {
			RespondWithError(c, err)
			return
		}
		RespondWithError(c, errors.InvalidParameter("body", err.Error()))
		return
	}

	updated := model.UpdateParameters(m, override)
	view := viewOf(m)
	view.Parameters = updated
	RespondOK(c, view)
}

func (a *API) capabilities(c *gin.Context) {
	RespondOK(c, a.dispatcher.Capabilities())
}

func (a *API) execute(c *gin.Context) {
	req, err := a.bindExecute(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	start := time.Now()
	text, err := a.dispatcher.Execute(c.Request.Context(), req.capability, req.model, req.params)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExecuteResponse{
		Model:      req.model,
		Capability: req.capability,
		Text:       text,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

func (a *API) executeJSON(c *gin.Context) {
	req, err := a.bindExecute(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	start := time.Now()
	data, err := dispatch.ExecuteTyped[any](c.Request.Context(), a.dispatcher, req.capability, req.model, req.params)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExecuteJSONResponse{
		Model:      req.model,
		Capability: req.capability,
		Data:       data,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// executeBody is a decoded execute request. params still holds the prompt,
// history and overrides; the dispatcher decodes them once the model resolves.
type executeBody struct {
	capability string
	model      string
	params     dispatch.Params
}

// bindExecute reads {capability, model, prompt, history, temperature,
// max_tokens}. Capability defaults to text-generation.
func (a *API) bindExecute(c *gin.Context) (executeBody, error) {
	var body executeBody
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body.params); err != nil {
		return body, errors.InvalidParameter("body", err.Error())
	}

	var err error
	if body.capability, err = stringParam(body.params, "capability"); err != nil {
		return body, err
	}
	if body.capability == "" {
		body.capability = dispatch.CapabilityTextGeneration
	}
	if body.model, err = stringParam(body.params, "model"); err != nil {
		return body, err
	}
	if body.model == "" {
		body.model = a.defaultModel
	}
	return body, nil
}

func stringParam(params dispatch.Params, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.InvalidParameter(key, fmt.Sprintf("must be a string, got %T", v))
	}
	return s, nil
}

func viewOf(m model.Model) ModelView {
	v := ModelView{Name: m.Name(), Description: m.Description(), Parameters: m.Parameters()}
	if vm, ok := m.(versioned); ok {
		v.Version = vm.Version()
	}
	return v
}
