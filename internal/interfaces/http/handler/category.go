package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/welth/backend/internal/domain/transaction"
)

// CategoryHandler serves the fixed category catalog
type CategoryHandler struct {
	BaseHandler
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryListQuery filters the category list
type CategoryListQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
}

// List godoc
// @ID           listCategories
//
//	@Summary		List categories
//	@Description	List the default income and expense categories
//	@Tags			categories
//	@Produce		json
//	@Param			type	query		string	false	"Category type"	Enums(INCOME, EXPENSE)
//	@Success		200		{object}	dto.Response{data=[]transaction.Category}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var query CategoryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	var categories []transaction.Category
	if query.Type == "" {
		categories = transaction.DefaultCategories()
	} else {
		categories = transaction.CategoriesOfType(transaction.TransactionType(query.Type))
	}

	h.SuccessList(c, categories, len(categories))
}
