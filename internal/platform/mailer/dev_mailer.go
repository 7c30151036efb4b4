package mailer

import (
	"fmt"

	"github.com/jhasumit/busline/pkg/logger"
)

type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendOTPEmail(toEmail, toName, code string) error {
	logger.Info("[DEV MAIL] OTP email",
		"to", toEmail,
		"name", toName,
		"code", code,
	)

	fmt.Printf("\n"+
		"=================================================================\n"+
		"OTP EMAIL (DEV MODE)\n"+
		"=================================================================\n"+
		"To: %s (%s)\n"+
		"Subject: Your Busline verification code\n"+
		"\n"+
		"Code: %s\n"+
		"=================================================================\n\n",
		toEmail, toName, code)

	return nil
}
