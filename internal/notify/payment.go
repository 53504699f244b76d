package notify

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// PaymentInstructions builds the message sent to a requester once their
// travel fee is assigned. When a payment link is configured it is rendered
// as a QR code so the requester can pay from another device.
func PaymentInstructions(total int, note, link string) Message {
	text := fmt.Sprintf("Your final price is £%d.\n%s", total, note)
	if link != "" {
		text += fmt.Sprintf("\nPay here: %s", link)
	}

	msg := Message{Text: text}
	if link != "" {
		if png, err := qrcode.Encode(link, qrcode.Medium, 256); err == nil {
			msg.PNG = png
		}
	}
	return msg
}
