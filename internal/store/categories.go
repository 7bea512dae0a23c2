package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"financemonkey/fm-cli/internal/api"
	"financemonkey/fm-cli/internal/apierror"
	"financemonkey/fm-cli/internal/logging"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/state"
)

// ErrHasChildren is the reason attached to the conflict when a parent
// category still has children.
var ErrHasChildren = errors.New("cannot delete a category that has sub-categories, delete the sub-categories first")

// Categories is the category store.
type Categories struct {
	*Resource[models.Category]
}

func NewCategories(tree *state.Tree, endpoint api.Endpoint[models.Category], logger logging.Logger) *Categories {
	r := NewResource(tree, state.CategoriesSlot, endpoint, logger)
	r.messages = defaultMessages("category", "categories")
	return &Categories{Resource: r}
}

// Children returns the cached categories whose parent is id.
func (c *Categories) Children(id string) []models.Category {
	var out []models.Category
	for _, cat := range c.Items() {
		if cat.ParentCategoryID == id {
			out = append(out, cat)
		}
	}
	return out
}

// Roots returns the cached categories without a parent.
func (c *Categories) Roots() []models.Category {
	var out []models.Category
	for _, cat := range c.Items() {
		if cat.IsRoot() {
			out = append(out, cat)
		}
	}
	return out
}

// Delete refuses, without any request or state change, to delete a
// category that has children in the cached collection. The server
// enforces the same rule; its 409 is reported the same way.
func (c *Categories) Delete(ctx context.Context, id string) error {
	if children := c.Children(id); len(children) > 0 {
		c.logger.Debug("Refusing to delete parent category",
			logging.F(logging.FieldRecordID, id),
			logging.F(logging.FieldCount, len(children)))
		return &apierror.ConflictError{
			Resource: "category",
			ID:       id,
			Reason:   fmt.Sprintf("%s (%d found)", ErrHasChildren, len(children)),
			Err:      ErrHasChildren,
		}
	}

	err := c.Resource.Delete(ctx, id)
	if apierror.IsStatus(err, http.StatusConflict) {
		return &apierror.ConflictError{
			Resource: "category",
			ID:       id,
			Reason:   apierror.Message(err, ErrHasChildren.Error()),
			Err:      err,
		}
	}
	return err
}
