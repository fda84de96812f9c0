package handlers

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
	"unicode/utf8"
)

const entityPost = "post"

func postFormView(heading string, action string, form *PostForm, errs FormErrors) *FormView {
	return &FormView{
		Heading: heading,
		Action:  action,
		Submit:  "Save",
		Fields: []FormField{
			typedField("textarea", "text", "Text", form.Text, errs),
			typedField("textarea", "description", "Description", form.Description, errs),
		},
	}
}

// excerpt shortens long post texts for the list.
func excerpt(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit]) + "…"
}

func (a *App) PostList(c echo.Context) error {
	rctx := c.Request().Context()

	var (
		posts      []models.Post
		postsCount int64
	)

	showAll, page, limit := a.parsePagination(readPagination(c))

	if err := a.db.WithContext(rctx).Model(&models.Post{}).Order("id DESC").Limit(limit).Offset(page * limit).Find(&posts).Error; err != nil {
		a.l.Error("failed to get post list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Post{}).Count(&postsCount).Error; err != nil {
		a.l.Error("failed to count post", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: "Posts",
		AddURL:  constants.RoutePosts + "/add",
		Columns: []string{"Text", "Description", "Created"},
		Pager:   a.pager(constants.RoutePosts, showAll, page, limit, postsCount),
	}
	for _, post := range posts {
		view.Rows = append(view.Rows, ListRow{
			Cells:     []Link{{Text: excerpt(post.Text, 80)}, {Text: excerpt(post.Description, 80)}, {Text: post.CreatedAt.Format("2006-01-02 15:04")}},
			EditURL:   fmt.Sprintf("%s/edit/%d", constants.RoutePosts, post.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", constants.RoutePosts, post.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", "Posts", view)
}

func (a *App) PostAddPage(c echo.Context) error {
	return a.renderForm(c, "Add post", postFormView("Add post", constants.RoutePosts+"/add", &PostForm{}, nil))
}

func (a *App) PostAdd(c echo.Context) error {
	rctx := c.Request().Context()

	// Bind the form
	var form PostForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Add post", postFormView("Add post", constants.RoutePosts+"/add", &form, errs))
	}

	post := models.Post{
		StixID:      uuid.New(),
		Text:        form.Text,
		Description: form.Description,
	}
	if err := a.db.WithContext(rctx).Create(&post).Error; err != nil {
		a.l.Error("failed to create post", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityPost, "added"))
	return c.Redirect(http.StatusFound, constants.RoutePosts)
}

func (a *App) getPost(c echo.Context) (*models.Post, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := a.db.WithContext(c.Request().Context()).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get post", zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return &post, nil
}

func (a *App) PostEditPage(c echo.Context) error {
	post, err := a.getPost(c)
	if err != nil {
		return err
	}

	form := PostForm{
		Text:        post.Text,
		Description: post.Description,
	}
	return a.renderForm(c, "Edit post", postFormView("Edit post", fmt.Sprintf("%s/edit/%d", constants.RoutePosts, post.ID), &form, nil))
}

func (a *App) PostEdit(c echo.Context) error {
	rctx := c.Request().Context()

	post, err := a.getPost(c)
	if err != nil {
		return err
	}

	// Bind the form
	var form PostForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Edit post", postFormView("Edit post", fmt.Sprintf("%s/edit/%d", constants.RoutePosts, post.ID), &form, errs))
	}

	post.Text = form.Text
	post.Description = form.Description
	if err := a.db.WithContext(rctx).Save(post).Error; err != nil {
		a.l.Error("failed to update post", zap.Uint("id", post.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityPost, "edited"))
	return c.Redirect(http.StatusFound, constants.RoutePosts)
}

func (a *App) PostDeletePage(c echo.Context) error {
	post, err := a.getPost(c)
	if err != nil {
		return err
	}

	return a.renderDelete(c, "Delete post", &DeleteView{
		Heading:   "Delete post",
		Subject:   excerpt(post.Text, 80),
		Action:    fmt.Sprintf("%s/delete/%d", constants.RoutePosts, post.ID),
		CancelURL: constants.RoutePosts,
	})
}

func (a *App) PostDelete(c echo.Context) error {
	rctx := c.Request().Context()

	post, err := a.getPost(c)
	if err != nil {
		return err
	}

	if err := a.db.WithContext(rctx).Unscoped().Delete(&models.Post{}, "id = ?", post.ID).Error; err != nil {
		a.l.Error("failed to delete post", zap.Uint("id", post.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityPost, "deleted"))
	return c.Redirect(http.StatusFound, constants.RoutePosts)
}
