package notify

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"alibi-backend/internal/schedule"
)

// Dispatcher sends the emergency alert: email with the latest excuse and
// apology (plus the proof screenshot when present), the local alert sound,
// and an incident-log entry. All three are best-effort and fire-and-forget;
// a failed email never blocks the log write or the caller.
type Dispatcher struct {
	SMTPHost   string
	SMTPPort   int
	Sender     string
	Password   string
	Recipients []string

	DataDir  string
	SoundCmd string

	Clock schedule.Clock
	IDs   schedule.IDGenerator

	log *IncidentLog
}

func NewDispatcher(smtpHost string, smtpPort int, sender, password string, recipients []string, dataDir, soundCmd string, clock schedule.Clock, ids schedule.IDGenerator) *Dispatcher {
	return &Dispatcher{
		SMTPHost:   smtpHost,
		SMTPPort:   smtpPort,
		Sender:     sender,
		Password:   password,
		Recipients: recipients,
		DataDir:    dataDir,
		SoundCmd:   soundCmd,
		Clock:      clock,
		IDs:        ids,
		log:        NewIncidentLog(filepath.Join(dataDir, "emergency_log.json")),
	}
}

// Trigger fires the emergency. overrideEmail, when non-empty, replaces the
// configured recipient list for this one dispatch.
func (d *Dispatcher) Trigger(overrideEmail string) {
	excuse, apology := d.latestTexts()

	recipients := d.Recipients
	if overrideEmail != "" {
		recipients = []string{overrideEmail}
	}
	if len(recipients) == 0 && d.Sender != "" {
		recipients = []string{d.Sender}
	}

	go d.sendEmail(excuse, apology, recipients)
	go d.playSound()
	go func() {
		if err := d.log.Append(Incident{
			Timestamp:  d.Clock.Now().Format("2006-01-02 15:04:05"),
			Excuse:     excuse,
			Apology:    apology,
			Recipients: recipients,
		}); err != nil {
			log.Println("❌ Logging error:", err)
		}
	}()
}

// Incidents returns the persisted incident log, oldest first.
func (d *Dispatcher) Incidents() []Incident {
	return d.log.List()
}

// latestTexts reads the latest-text files written at generation time, so an
// alert after a restart still carries the last known texts.
func (d *Dispatcher) latestTexts() (string, string) {
	excuse := "No excuse."
	if raw, err := os.ReadFile(filepath.Join(d.DataDir, "latest_excuse.txt")); err == nil {
		if t := strings.TrimSpace(string(raw)); t != "" {
			excuse = t
		}
	}

	apology := "No apology."
	if raw, err := os.ReadFile(filepath.Join(d.DataDir, "latest_apology.txt")); err == nil {
		if t := strings.TrimSpace(string(raw)); t != "" {
			apology = t
		}
	}
	return excuse, apology
}

func (d *Dispatcher) sendEmail(excuse, apology string, recipients []string) {
	if d.Sender == "" || len(recipients) == 0 {
		log.Println("❌ Email error: no sender or recipients configured")
		return
	}

	alertID := strings.ReplaceAll(d.IDs.New(), "-", "")
	if len(alertID) > 8 {
		alertID = alertID[:8]
	}
	stamp := d.Clock.Now().Format("2006-01-02 15:04:05")
	subject := fmt.Sprintf("🚨 Emergency Alert [%s] – ID:%s", stamp, alertID)
	body := fmt.Sprintf("📝 Excuse:\n%s\n\n🙏 Apology:\n%s", excuse, apology)

	var attachment []byte
	if raw, err := os.ReadFile(filepath.Join(d.DataDir, "screenshot.png")); err == nil {
		attachment = raw
	}

	msg := BuildEmail(d.Sender, recipients, subject, body, attachment)
	if err := sendSMTP(d.SMTPHost, d.SMTPPort, d.Sender, d.Password, recipients, msg); err != nil {
		log.Println("❌ Email error:", err)
		return
	}
	log.Println("✅ Emergency email sent.")
}

func (d *Dispatcher) playSound() {
	if d.SoundCmd == "" {
		return
	}
	parts := strings.Fields(d.SoundCmd)
	cmd := exec.Command(parts[0], parts[1:]...)
	if err := cmd.Run(); err != nil {
		log.Println("❌ Sound error:", err)
	}
}
