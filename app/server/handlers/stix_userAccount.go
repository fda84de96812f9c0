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
	"stix-ui/app/server/utils"
)

const entityUserAccount = "user account"

func userAccountFormView(heading string, action string, form *UserAccountForm, errs FormErrors) *FormView {
	return &FormView{
		Heading: heading,
		Action:  action,
		Submit:  "Save",
		Fields: []FormField{
			textField("name", "Display name", form.Name, errs),
			typedField("textarea", "description", "Description", form.Description, errs),
			textField("account_type", "Account type", form.AccountType, errs),
			typedField("date", "account_created", "Account created", form.AccountCreated, errs),
			checkboxField("account_is_disabled", "Account is disabled", form.AccountIsDisabled, errs),
		},
	}
}

func (a *App) userAccountMapFields(form *UserAccountForm, account *models.UserAccount) {
	account.Name = form.Name
	account.Description = form.Description
	account.AccountType = form.AccountType
	account.AccountIsDisabled = form.AccountIsDisabled
	// Already validated as a date
	account.AccountCreated, _ = utils.ParseDate(form.AccountCreated)
}

func (a *App) UserAccountList(c echo.Context) error {
	rctx := c.Request().Context()

	var (
		accounts      []models.UserAccount
		accountsCount int64
	)

	showAll, page, limit := a.parsePagination(readPagination(c))

	if err := a.db.WithContext(rctx).Model(&models.UserAccount{}).Order("name").Limit(limit).Offset(page * limit).Find(&accounts).Error; err != nil {
		a.l.Error("failed to get user account list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.UserAccount{}).Count(&accountsCount).Error; err != nil {
		a.l.Error("failed to count user account", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	view := &ListView{
		Heading: "User accounts",
		AddURL:  constants.RouteUserAccounts + "/add",
		Columns: []string{"Display name", "Account type", "Created", "Disabled"},
		Pager:   a.pager(constants.RouteUserAccounts, showAll, page, limit, accountsCount),
	}
	for _, account := range accounts {
		disabled := "No"
		if account.AccountIsDisabled {
			disabled = "Yes"
		}
		view.Rows = append(view.Rows, ListRow{
			Cells:     []Link{{Text: account.Name}, {Text: account.AccountType}, {Text: utils.FormatDate(account.AccountCreated)}, {Text: disabled}},
			EditURL:   fmt.Sprintf("%s/edit/%d", constants.RouteUserAccounts, account.ID),
			DeleteURL: fmt.Sprintf("%s/delete/%d", constants.RouteUserAccounts, account.ID),
		})
	}

	return a.render(c, http.StatusOK, "crud/list.html", "User accounts", view)
}

func (a *App) UserAccountAddPage(c echo.Context) error {
	return a.renderForm(c, "Add user account", userAccountFormView("Add user account", constants.RouteUserAccounts+"/add", &UserAccountForm{}, nil))
}

func (a *App) UserAccountAdd(c echo.Context) error {
	rctx := c.Request().Context()
	action := constants.RouteUserAccounts + "/add"

	// Bind the form
	var form UserAccountForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Add user account", userAccountFormView("Add user account", action, &form, errs))
	}

	if taken, err := valueTaken[models.UserAccount](a.db.WithContext(rctx), "name", form.Name, 0); err != nil {
		a.l.Error("failed to check user account name", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		errs.Add("name", msgNameInUse)
		return a.renderForm(c, "Add user account", userAccountFormView("Add user account", action, &form, errs))
	}

	account := models.UserAccount{
		StixID: uuid.New(),
	}
	a.userAccountMapFields(&form, &account)

	if err := a.db.WithContext(rctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderForm(c, "Add user account", userAccountFormView("Add user account", action, &form, errs))
		}
		a.l.Error("failed to create user account", zap.String("name", account.Name), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityUserAccount, "added"))
	return c.Redirect(http.StatusFound, constants.RouteUserAccounts)
}

func (a *App) getUserAccount(c echo.Context) (*models.UserAccount, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}

	var account models.UserAccount
	if err := a.db.WithContext(c.Request().Context()).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a.er(c, http.StatusNotFound)
		} else {
			a.l.Error("failed to get user account", zap.Uint("id", id), zap.Error(err))
			return nil, a.er(c, http.StatusInternalServerError)
		}
	}
	return &account, nil
}

func (a *App) UserAccountEditPage(c echo.Context) error {
	account, err := a.getUserAccount(c)
	if err != nil {
		return err
	}

	form := UserAccountForm{
		Name:              account.Name,
		Description:       account.Description,
		AccountType:       account.AccountType,
		AccountCreated:    utils.FormatDate(account.AccountCreated),
		AccountIsDisabled: account.AccountIsDisabled,
	}
	return a.renderForm(c, "Edit user account", userAccountFormView("Edit user account", fmt.Sprintf("%s/edit/%d", constants.RouteUserAccounts, account.ID), &form, nil))
}

func (a *App) UserAccountEdit(c echo.Context) error {
	rctx := c.Request().Context()

	account, err := a.getUserAccount(c)
	if err != nil {
		return err
	}
	action := fmt.Sprintf("%s/edit/%d", constants.RouteUserAccounts, account.ID)

	// Bind the form
	var form UserAccountForm
	errs, err := a.bindForm(c, &form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return a.renderForm(c, "Edit user account", userAccountFormView("Edit user account", action, &form, errs))
	}

	if taken, err := valueTaken[models.UserAccount](a.db.WithContext(rctx), "name", form.Name, account.ID); err != nil {
		a.l.Error("failed to check user account name", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		errs.Add("name", msgNameInUse)
		return a.renderForm(c, "Edit user account", userAccountFormView("Edit user account", action, &form, errs))
	}

	a.userAccountMapFields(&form, account)
	if err := a.db.WithContext(rctx).Save(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.Add("name", msgNameInUse)
			return a.renderForm(c, "Edit user account", userAccountFormView("Edit user account", action, &form, errs))
		}
		a.l.Error("failed to update user account", zap.Uint("id", account.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityUserAccount, "edited"))
	return c.Redirect(http.StatusFound, constants.RouteUserAccounts)
}

func (a *App) UserAccountDeletePage(c echo.Context) error {
	account, err := a.getUserAccount(c)
	if err != nil {
		return err
	}

	return a.renderDelete(c, "Delete user account", &DeleteView{
		Heading:   "Delete user account",
		Subject:   account.Name,
		Action:    fmt.Sprintf("%s/delete/%d", constants.RouteUserAccounts, account.ID),
		CancelURL: constants.RouteUserAccounts,
	})
}

func (a *App) UserAccountDelete(c echo.Context) error {
	rctx := c.Request().Context()

	account, err := a.getUserAccount(c)
	if err != nil {
		return err
	}

	if err := a.db.WithContext(rctx).Unscoped().Delete(&models.UserAccount{}, "id = ?", account.ID).Error; err != nil {
		a.l.Error("failed to delete user account", zap.Uint("id", account.ID), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.stixChanged(rctx)

	a.flash(c, stixMessage(entityUserAccount, "deleted"))
	return c.Redirect(http.StatusFound, constants.RouteUserAccounts)
}
