package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"

	"github.com/gin-gonic/gin"
)

var errInvalidBody = apperr.Validation("Invalid request body")

// BindJSON decodes the request body into dst and validates it with the
// struct's binding tags.
func BindJSON(c *gin.Context, dst interface{}) error {
	body, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return errInvalidBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errInvalidBody
	}
	return Validate(dst)
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name, entity string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + entity + " ID")
	}
	return id, nil
}

type batchItem[T any] struct {
	value T
	err   error
}

// bindOneOrMany accepts either a single JSON object or an array of at most
// max objects. Items that fail to decode or validate carry their error so
// the rest of the batch can proceed.
func bindOneOrMany[T any](c *gin.Context, max int, noun string) ([]batchItem[T], bool, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, false, errInvalidBody
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false, errInvalidBody
	}

	if body[0] != '[' {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, false, errInvalidBody
		}
		return []batchItem[T]{{value: v, err: Validate(&v)}}, false, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, true, errInvalidBody
	}
	if len(raw) == 0 {
		return nil, true, apperr.Validation(strings.ToUpper(noun[:1]) + noun[1:] + " data cannot be empty")
	}
	if len(raw) > max {
		return nil, true, apperr.Validation(fmt.Sprintf("Cannot create more than %d %s at once", max, noun))
	}

	items := make([]batchItem[T], len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			items[i].err = errInvalidBody
			continue
		}
		items[i] = batchItem[T]{value: v, err: Validate(&v)}
	}
	return items, true, nil
}

// CreateOneOrMany drives a create endpoint that takes a single object or a
// batch of at most max items; noun is the plural used in batch errors.
// A single object answers with the created entity. A batch answers with a
// BatchResponse, 201 when at least one item succeeded and 400 otherwise.
func CreateOneOrMany[T any, R any](c *gin.Context, max int, noun string, create func(ctx context.Context, item T) (R, error)) {
	items, batch, err := bindOneOrMany[T](c, max, noun)
	if err != nil {
		RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if !batch {
		if items[0].err != nil {
			RespondError(c, items[0].err)
			return
		}
		out, err := create(ctx, items[0].value)
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
		return
	}

	var created []R
	var errs []BatchItemError
	for i, item := range items {
		if item.err != nil {
			errs = append(errs, BatchItemError{Index: i, Error: PublicMessage(item.err)})
			continue
		}
		out, err := create(ctx, item.value)
		if err != nil {
			if StatusFor(err) == http.StatusInternalServerError {
				logger.Error("batch item failed", "path", c.FullPath(), "index", i, "error", err)
			}
			errs = append(errs, BatchItemError{Index: i, Error: PublicMessage(err)})
			continue
		}
		created = append(created, out)
	}

	status := http.StatusCreated
	if len(created) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, NewBatchResponse(created, errs))
}
