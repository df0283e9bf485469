package messaging

import (
	"fmt"
	"strings"
	"time"

	"photo_studio/internal/domain/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Messages go to clients in French.
var titleCaser = cases.Title(language.French)

// ServiceLabel turns a service type such as "corporate_event" into "Corporate Event".
func ServiceLabel(serviceType string) string {
	return titleCaser.String(strings.ReplaceAll(serviceType, "_", " "))
}

func otpMessage(studio, code string, ttl time.Duration) string {
	return fmt.Sprintf("%s : votre code de vérification est %s. Il expire dans %d minutes. Ne le partagez avec personne.",
		studio, code, int(ttl.Minutes()))
}

func bookingConfirmationMessage(studio string, b models.Booking) string {
	return fmt.Sprintf("Bonjour %s, votre réservation %s (%s) du %s est bien enregistrée. %s vous contactera pour la confirmer.",
		b.Client.Name, b.BookingNumber, ServiceLabel(b.ServiceType), b.ScheduledDate.Format("02/01/2006 15:04"), studio)
}

func bookingAlertMessage(b models.Booking) string {
	return fmt.Sprintf("Nouvelle réservation %s : %s, %s, le %s. Tél : %s",
		b.BookingNumber, b.Client.Name, ServiceLabel(b.ServiceType), b.ScheduledDate.Format("02/01/2006 15:04"), b.Client.Phone)
}

func gallerySharedMessage(studio string, g models.Gallery, url string) string {
	msg := fmt.Sprintf("Bonjour %s, vos photos « %s » sont disponibles : %s", g.Client.Name, g.Title, url)
	if g.ExpiresAt != nil {
		msg += fmt.Sprintf(" (jusqu'au %s)", g.ExpiresAt.Format("02/01/2006"))
	}

	return msg + " - " + studio
}
