package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pocket-ussd/locale"
	"pocket-ussd/metrics"
	"pocket-ussd/ussd"
	"pocket-ussd/utils"
)

var Validate = validator.New()

var resolver *ussd.Resolver

// ussdRequest is what both gateway variants carry. Text is a pointer because
// an absent field and an empty trail mean different things.
type ussdRequest struct {
	SessionId   string `validate:"required"`
	ServiceCode string
	PhoneNumber string `validate:"required"`
	Text        *string
}

// Setup installs the resolver used by the USSD handlers.
func Setup(r *ussd.Resolver) {
	resolver = r
}

func ServiceStatusCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": 200, "message": "Pocket USSD service is running!"})
}

// USSDCallback handles the form-encoded POST the gateway sends on every
// subscriber input.
func USSDCallback(c *fiber.Ctx) error {
	ussd_data := ussdRequest{
		SessionId:   c.FormValue("sessionId"),
		ServiceCode: c.FormValue("serviceCode"),
		PhoneNumber: c.FormValue("phoneNumber"),
	}
	if c.Context().PostArgs().Has("text") {
		text := c.FormValue("text")
		ussd_data.Text = &text
	}
	return handle(c, ussd_data)
}

// USSDService is the query string variant of USSDCallback. It also accepts
// the msisdn/input names some gateways use.
func USSDService(c *fiber.Ctx) error {
	ussd_data := ussdRequest{
		SessionId:   c.Query("sessionId"),
		ServiceCode: c.Query("serviceCode"),
		PhoneNumber: c.Query("phoneNumber", c.Query("msisdn")),
	}
	args := c.Context().QueryArgs()
	switch {
	case args.Has("text"):
		text := c.Query("text")
		ussd_data.Text = &text
	case args.Has("input"):
		text := c.Query("input")
		ussd_data.Text = &text
	}
	return handle(c, ussd_data)
}

func handle(c *fiber.Ctx, ussd_data ussdRequest) error {
	start := time.Now()
	if err := Validate.Struct(ussd_data); err != nil || ussd_data.Text == nil {
		utils.LogMessage("info", fmt.Sprintf("USSD request rejected: missing fields, err: %v", err), "ussd-service")
		metrics.RecordResolve(utils.ActionEnd, ussd.Kind(ussd.ErrInvalidRequest), time.Since(start))
		return utils.USSDResponse(c, utils.ActionEnd, locale.InvalidRequest)
	}
	if resolver == nil {
		utils.LogMessage("critical", "USSD request received before the resolver was set up", "ussd-service")
		return utils.USSDResponse(c, utils.ActionEnd, locale.SystemError)
	}
	resp := resolver.Resolve(c.UserContext(), ussd.Request{
		SessionId:   strings.TrimSpace(ussd_data.SessionId),
		PhoneNumber: strings.TrimSpace(ussd_data.PhoneNumber),
		Text:        ussd_data.Text,
	})
	metrics.RecordResolve(resp.Action, ussd.Kind(resp.Err), time.Since(start))
	return utils.USSDResponse(c, resp.Action, resp.Message)
}
