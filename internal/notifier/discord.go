package notifier

import (
	"fmt"
	"log"

	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/bwmarrin/discordgo"
)

type Notifier interface {
	NotifyBookingCreated(b *models.Booking) error
	NotifyCapacityOverride(b *models.Booking, operator string) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyBookingCreated(b *models.Booking) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	keysStr := "no"
	if b.CarKeys {
		keysStr = "yes"
	}

	message := fmt.Sprintf("🅿️ **New Booking %s**\n**Customer:** %s\n**Dates:** %s %s - %s %s\n**Cars:** %d\n**Keys left:** %s\n**Price:** %.2f",
		b.BookingCode,
		b.CustomerName,
		b.ArrivalDate, b.ArrivalTime,
		b.DepartureDate, b.DepartureTime,
		b.Cars(),
		keysStr,
		b.TotalPrice,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

func (n *DiscordNotifier) NotifyCapacityOverride(b *models.Booking, operator string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("⚠️ **Capacity Override**\n**Booking:** %s\n**Dates:** %s - %s\n**Cars:** %d\n**Forced by:** %s",
		b.BookingCode,
		b.ArrivalDate,
		b.DepartureDate,
		b.Cars(),
		operator,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
