package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dynamic-nft/internal/address"
	"dynamic-nft/internal/storage"
)

// MintRequest is the body of POST /v1/tokens.
type MintRequest struct {
	ToAddress string `json:"to_address" binding:"required"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteResponse wraps the result of a mutating operation with its summary text.
type WriteResponse struct {
	Result  any    `json:"result"`
	Summary string `json:"summary"`
}

// OwnerResponse is the body of GET /v1/tokens/:id/owner.
type OwnerResponse struct {
	TokenID string `json:"token_id"`
	Owner   string `json:"owner"`
}

func (s *Server) mint(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to_address is required"})
		return
	}
	if s.opts.StrictOwnerAddress {
		if err := address.Validate(req.ToAddress); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
	}

	result, err := s.ledger.Mint(c.Request.Context(), req.ToAddress)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, WriteResponse{Result: result, Summary: result.Summary()})
}

func (s *Server) update(c *gin.Context) {
	result, err := s.ledger.Update(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, WriteResponse{Result: result, Summary: result.Summary()})
}

func (s *Server) batchUpdate(c *gin.Context) {
	result, err := s.ledger.BatchUpdateAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, WriteResponse{Result: result, Summary: result.Summary()})
}

func (s *Server) metadata(c *gin.Context) {
	md, err := s.ledger.Metadata(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, md)
}

func (s *Server) owner(c *gin.Context) {
	id := c.Param("id")
	owner, err := s.ledger.OwnerOf(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, OwnerResponse{TokenID: id, Owner: owner})
}

func (s *Server) preview(c *gin.Context) {
	id := c.Param("id")
	raw, explicit := c.GetQuery("price")
	if !explicit {
		result, err := s.ledger.Preview(c.Request.Context(), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, WriteResponse{Result: result, Summary: result.Summary()})
		return
	}

	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "price must be a positive integer"})
		return
	}
	result, err := s.ledger.PreviewAt(c.Request.Context(), id, price)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, WriteResponse{Result: result, Summary: result.Summary()})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.ledger.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) history(c *gin.Context) {
	start, err := queryInt(c, "start", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	end, err := queryInt(c, "end", math.MaxInt64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if end < start {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end must not precede start"})
		return
	}

	updates, err := s.ledger.History(c.Request.Context(), start, end)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(updates), "updates": updates})
}

func (s *Server) tokenHistory(c *gin.Context) {
	id := c.Param("id")
	updates, err := s.ledger.TokenHistory(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token_id": id, "count": len(updates), "updates": updates})
}

// fail maps ledger errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "token not found"})
	case errors.Is(err, storage.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func queryInt(c *gin.Context, key string, def int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.Newf("%s must be a non-negative unix millisecond timestamp", key)
	}
	return v, nil
}
