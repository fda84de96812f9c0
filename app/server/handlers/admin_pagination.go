package handlers

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/url"
	"strconv"
	"stix-ui/app/server/constants"
)

// readPagination pulls ?page and ?limit, ignoring values that are not numbers.
func readPagination(c echo.Context) (page *uint, limit *uint) {
	if v, err := strconv.ParseUint(c.QueryParam("page"), 10, 32); err == nil {
		p := uint(v)
		page = &p
	}
	if v, err := strconv.ParseUint(c.QueryParam("limit"), 10, 32); err == nil {
		l := uint(v)
		limit = &l
	}
	return page, limit
}

func (a *App) parsePagination(page *uint, limit *uint) (bool, int, int) {
	if page != nil && *page == 0 && limit != nil && *limit == 0 {
		// page=0&limit=0 shows everything
		return true, 0, -1
	}
	// In: page number (1 based), limit per page
	// Out: page offset (0 based), limit unchanged
	var parsedPage, parsedLimit uint

	if page == nil || *page < 1 {
		parsedPage = 0
	} else {
		parsedPage = *page - 1
	}

	if limit == nil || *limit <= 0 {
		parsedLimit = constants.DefaultPageLimit
	} else {
		parsedLimit = *limit
	}

	return false, int(parsedPage), int(parsedLimit)
}

func (a *App) calcMaxPage(count int64, showAll bool, limit int) int64 {
	if showAll {
		return 1
	} else {
		pageMax := count / int64(limit)
		if (count % int64(limit)) != 0 {
			pageMax++
		}
		return pageMax
	}
}

// pager links the neighbouring pages of a list, nil when everything fits on one page.
func (a *App) pager(basePath string, showAll bool, page int, limit int, count int64) *Pager {
	pageMax := a.calcMaxPage(count, showAll, limit)
	if showAll || pageMax <= 1 {
		return nil
	}

	link := func(p int) string {
		return fmt.Sprintf("%s?%s", basePath, url.Values{
			"page":  {strconv.Itoa(p)},
			"limit": {strconv.Itoa(limit)},
		}.Encode())
	}

	pager := &Pager{
		Page:    page + 1,
		PageMax: pageMax,
	}
	if page > 0 {
		pager.PrevURL = link(page)
	}
	if int64(page+1) < pageMax {
		pager.NextURL = link(page + 2)
	}
	return pager
}
