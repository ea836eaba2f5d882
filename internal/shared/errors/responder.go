package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper maps domain/application errors to ProblemDetail.
type ErrorMapper func(err error) (ProblemDetail, bool)

// Responder writes Problem Details documents and stops the handler chain.
// Mappers are consulted in order; errors none of them claim are reported as
// internal failures stamped with FallbackCode.
type Responder struct {
	// BaseURI is prepended to problem type URIs if they are relative.
	BaseURI      string
	FallbackCode string
	mappers      []ErrorMapper
}

// NewResponder creates a responder with the given mappers.
func NewResponder(baseURI, fallbackCode string, mappers ...ErrorMapper) *Responder {
	return &Responder{BaseURI: baseURI, FallbackCode: fallbackCode, mappers: mappers}
}

// Respond sends problem with the problem+json content type and aborts.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.BaseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.BaseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// RespondError renders err through the mapper chain. A nil error is a no-op.
func (r *Responder) RespondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if !errors.As(err, &problem) {
		problem = ErrInternal.WithDetail(err.Error())
	}
	if _, coded := problem.Extensions["code"]; !coded && r.FallbackCode != "" {
		problem = problem.WithCode(r.FallbackCode)
	}
	r.Respond(c, problem)
}
