package handler

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"companyapi/internal/model"
	"companyapi/internal/service"
)

const homePage = "<h1>Default route</h1>"

// Home serves the static landing page.
//
// @Summary Landing page
// @Produce html
// @Success 200 {string} string
// @Router / [get]
func Home() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Type("html").SendString(homePage)
	}
}

// ListCompanies returns the whole collection.
//
// @Summary List companies
// @Tags companies
// @Produce json
// @Success 200 {array} model.Company
// @Failure 400 {object} errorPayload
// @Router /api/companies [get]
func ListCompanies(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// GetCompany returns one company.
//
// @Summary Get a company
// @Tags companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} model.Company
// @Failure 400 {object} errorPayload
// @Failure 404
// @Router /api/companies/{id} [get]
func GetCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return writeError(c, fiber.StatusBadRequest, service.ErrIDRequired.Error())
		}
		company, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(company)
	}
}

// CreateCompany stores the posted company and echoes it with its new ID.
//
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Param company body model.CompanyInput true "Company"
// @Success 200 {object} model.Company
// @Failure 400 {object} errorPayload
// @Router /api/companies [post]
func CreateCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := bytes.TrimSpace(c.Body())
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return writeError(c, fiber.StatusBadRequest, "missing body content")
		}

		var in model.CompanyInput
		if err := c.App().Config().JSONDecoder(body, &in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid body content")
		}

		company, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(company)
	}
}

// DeleteCompany removes a company.
//
// @Summary Delete a company
// @Tags companies
// @Param id path string true "Company ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404
// @Router /api/companies/{id} [delete]
func DeleteCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return writeError(c, fiber.StatusBadRequest, service.ErrIDRequired.Error())
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
