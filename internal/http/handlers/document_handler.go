// Document store endpoints. The wildcard path addresses either a collection
// (odd number of segments) or a document (even number).
//
//   - GET    /docs/{path}   (read a collection or a document; collections carry a weak ETag)
//   - PUT    /docs/{path}   (create or replace a document)
//   - POST   /docs/{path}   (add a document with a generated id to a collection)
//   - DELETE /docs/{path}   (delete a document)
package handlers

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-fitcircle/internal/docpath"
	"github.com/tbourn/go-fitcircle/internal/docstore"
	"github.com/tbourn/go-fitcircle/internal/http/middleware"
	"github.com/tbourn/go-fitcircle/internal/services"
	"github.com/tbourn/go-fitcircle/internal/utils"
)

// CollectionResponse lists a collection in server order.
type CollectionResponse struct {
	Path  string            `json:"path" example:"groups/g1/messages"`
	Items []docstore.Record `json:"items"`
}

// AddDocumentResponse carries the generated id.
type AddDocumentResponse struct {
	ID   string `json:"id" example:"4f1c2b7e9d0a4b3c"`
	Path string `json:"path" example:"groups/g1/messages/4f1c2b7e9d0a4b3c"`
}

// pathParam parses the wildcard route parameter.
func pathParam(c *gin.Context) (docpath.Path, bool) {
	p, err := services.ParsePath(utils.TrimPath(c.Param("path")))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidPath, err.Error())
		return docpath.Path{}, false
	}
	return p, true
}

// constraintsQuery parses where, order_by and limit query parameters.
func constraintsQuery(c *gin.Context) (docstore.Constraints, bool) {
	cs, err := docstore.ParseConstraints(
		utils.NonEmpty(c.QueryArray("where")),
		utils.NonEmpty(c.QueryArray("order_by")),
		c.Query("limit"),
	)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadConstraint, err.Error())
		return nil, false
	}
	return cs, true
}

// docError maps a service error to a response.
func docError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPath):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPath, err.Error())
	case errors.Is(err, services.ErrBadConstraint), errors.Is(err, docstore.ErrBadConstraint):
		fail(c, http.StatusBadRequest, ErrCodeBadConstraint, err.Error())
	case errors.Is(err, services.ErrEmptyBody):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrReadOnly):
		fail(c, http.StatusMethodNotAllowed, ErrCodeReadOnly, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, ErrCodeTimeout, "document store timed out")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// collectionETag identifies the current content of a collection read with
// cs. It is empty when the store keeps no statistics.
func (h *Handlers) collectionETag(c *gin.Context, p docpath.Path, cs docstore.Constraints) string {
	count, latest, ok, err := h.docs.CollectionStats(c.Request.Context(), p)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("collection stats")
		return ""
	}
	if !ok {
		return ""
	}
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	q := fnv.New32a()
	_, _ = q.Write([]byte(cs.Key()))
	return fmt.Sprintf(`W/"docs:%s:%d:%d:%08x"`, p.Key(), count, ts, q.Sum32())
}

// GetDocuments godoc
// @ID          getDocuments
// @Summary     Read a collection or a document
// @Description Odd segment counts address collections, even counts documents. Collections accept
// @Description where=field:op:value (repeatable), order_by=field[:asc|:desc] (repeatable) and limit=N,
// @Description and return a weak ETag; If-None-Match may yield 304.
// @Tags        Documents
// @Produce     json
// @Param       path           path    string    true   "Slash-separated path"  example(groups/g1/messages)
// @Param       where          query   []string  false  "Filter field:op:value"  collectionFormat(multi)
// @Param       order_by       query   []string  false  "Ordering field[:asc|:desc]"  collectionFormat(multi)
// @Param       limit          query   int       false  "Maximum documents"  minimum(1)
// @Param       If-None-Match  header  string    false  "Return 304 if ETag matches"
// @Success     200  {object}  handlers.CollectionResponse  "Collection"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Document not found"
// @Router      /docs/{path} [get]
func (h *Handlers) GetDocuments(c *gin.Context) {
	p, ok1 := pathParam(c)
	if !ok1 {
		return
	}
	ctx := c.Request.Context()

	if p.IsDocument() {
		rec, err := h.docs.Document(ctx, p)
		if err != nil {
			docError(c, err)
			return
		}
		ok(c, http.StatusOK, rec)
		return
	}

	cs, ok2 := constraintsQuery(c)
	if !ok2 {
		return
	}
	if etag := h.collectionETag(c, p, cs); etag != "" {
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}
	items, err := h.docs.Collection(ctx, p, cs)
	if err != nil {
		docError(c, err)
		return
	}
	ok(c, http.StatusOK, CollectionResponse{Path: p.Key(), Items: items})
}

func bindBody(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be a JSON object")
		return nil, false
	}
	return body, true
}

// PutDocument godoc
// @ID          putDocument
// @Summary     Create or replace a document
// @Tags        Documents
// @Accept      json
// @Param       path  path  string  true  "Document path"  example(users/u1)
// @Param       body  body  object  true  "Document fields"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /docs/{path} [put]
func (h *Handlers) PutDocument(c *gin.Context) {
	p, ok1 := pathParam(c)
	if !ok1 {
		return
	}
	body, ok2 := bindBody(c)
	if !ok2 {
		return
	}
	if err := h.docs.Put(c.Request.Context(), p, body); err != nil {
		docError(c, err)
		return
	}
	noContent(c)
}

// AddDocument godoc
// @ID          addDocument
// @Summary     Add a document to a collection
// @Description Supports idempotency via the Idempotency-Key header; a retry returns the first id.
// @Tags        Documents
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       path             path    string  true   "Collection path"  example(groups/g1/messages)
// @Param       body             body    object  true   "Document fields"
// @Success     201  {object}  handlers.AddDocumentResponse
// @Header      201  {string}  Idempotency-Replayed  "true when replayed"
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /docs/{path} [post]
func (h *Handlers) AddDocument(c *gin.Context) {
	if h.replay(c) {
		return
	}
	p, ok1 := pathParam(c)
	if !ok1 {
		return
	}
	body, ok2 := bindBody(c)
	if !ok2 {
		return
	}
	id, err := h.docs.Add(c.Request.Context(), p, body)
	if err != nil {
		docError(c, err)
		return
	}
	h.respond(c, http.StatusCreated, AddDocumentResponse{ID: id, Path: p.Key() + docpath.Separator + id})
}

// DeleteDocument godoc
// @ID          deleteDocument
// @Summary     Delete a document
// @Tags        Documents
// @Param       path  path  string  true  "Document path"  example(users/u1)
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /docs/{path} [delete]
func (h *Handlers) DeleteDocument(c *gin.Context) {
	p, ok1 := pathParam(c)
	if !ok1 {
		return
	}
	if err := h.docs.Delete(c.Request.Context(), p); err != nil {
		docError(c, err)
		return
	}
	noContent(c)
}
