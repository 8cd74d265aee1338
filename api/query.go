package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/leasepay/app/telemetry"
)

const maxPageLimit = 1000

// runQuery opens a committed read context under a span, runs fn and writes its
// result as JSON.
func (s *Server) runQuery(c *gin.Context, module, name string, fn func(ctx sdk.Context) (any, error)) {
	spanCtx, span := telemetry.StartQuerySpan(c.Request.Context(), module, name)
	defer span.End()

	ctx, err := s.backend.QueryContext(spanCtx)
	if err != nil {
		telemetry.RecordError(span, err)
		writeError(c, err)
		return
	}
	res, err := fn(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// writeError maps a gRPC status or context error to an HTTP response.
func writeError(c *gin.Context, err error) {
	code := status.Code(err)
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}

	httpStatus := http.StatusInternalServerError
	switch code {
	case codes.NotFound:
		httpStatus = http.StatusNotFound
	case codes.InvalidArgument:
		httpStatus = http.StatusBadRequest
	case codes.Canceled, codes.DeadlineExceeded:
		httpStatus = http.StatusRequestTimeout
	}

	msg := err.Error()
	if st, ok := status.FromError(err); ok {
		msg = st.Message()
	}
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{Error: msg, Code: code.String()})
}

func badRequest(c *gin.Context, err error) {
	writeError(c, status.Error(codes.InvalidArgument, err.Error()))
}

// pageRequest reads limit, key and count_total. No parameters means no pagination.
func pageRequest(c *gin.Context) (*query.PageRequest, error) {
	limit, key, countTotal := c.Query("limit"), c.Query("key"), c.Query("count_total")
	if limit == "" && key == "" && countTotal == "" {
		return nil, nil
	}

	req := &query.PageRequest{}
	if limit != "" {
		n, err := cast.ToUint64E(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q", limit)
		}
		if n > maxPageLimit {
			return nil, fmt.Errorf("limit must not exceed %d", maxPageLimit)
		}
		req.Limit = n
	}
	if key != "" {
		bz, err := base64.URLEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("invalid page key: %w", err)
		}
		req.Key = bz
	}
	if countTotal != "" {
		b, err := cast.ToBoolE(countTotal)
		if err != nil {
			return nil, fmt.Errorf("invalid count_total %q", countTotal)
		}
		req.CountTotal = b
	}
	return req, nil
}

func encodeKey(bz []byte) string {
	if len(bz) == 0 {
		return ""
	}
	return base64.URLEncoding.EncodeToString(bz)
}

// uintParam parses an optional unsigned query or path value; empty means zero.
func uintParam(name, v string) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := cast.ToUint64E(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}
