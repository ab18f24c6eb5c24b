// README: Assistant copy; canned messages and LLM prompt templates per lane.
package intake

import (
	"fmt"
	"strings"
	"text/template"

	"fria/internal/modules/form"
)

const (
	fallbackGreeting = "Hi, I'm your roadside assistant. Are you safe right now?"
	emergencyMessage = "Your safety comes first. Please call 911 or your local emergency number right now, " +
		"and move away from traffic if you can do so safely. I've paused this tow request; " +
		"reach out again once you're safe."
	closingMessage = "Thanks, I have everything I need. Your tow request has been submitted " +
		"and a dispatcher will contact you shortly with an arrival time."
	geocodeFailedMessage = "I couldn't determine your address from your location. Please type it manually."
)

func greeting(firstName, vehicleModel string) string {
	if firstName == "" || vehicleModel == "" {
		return fallbackGreeting
	}
	return fmt.Sprintf("Hi %s, I see you're driving a %s. Let's confirm a few quick details. Are you safe right now?",
		firstName, vehicleModel)
}

type laneCopy struct {
	topic string
	ask   string
	retry string
}

var laneCopies = map[Lane]laneCopy{
	LaneSafety: {
		topic: "whether the driver is safe right now (a yes or no answer)",
		ask:   "Are you safe right now?",
		retry: "Sorry, I need a clear answer first: are you somewhere safe right now? Please answer yes or no.",
	},
	LaneIncident: {
		topic: "what happened and what damage the vehicle has",
		ask:   "Can you describe what happened and any damage to the vehicle?",
		retry: "Could you tell me a bit more about what happened, for example what was hit and which part of the car is damaged?",
	},
	LaneLocation: {
		topic: "the street address, intersection or highway exit where the vehicle is",
		ask:   "Where is the vehicle right now? A street address or nearest intersection works, or you can share your GPS location.",
		retry: "I couldn't quite place that. What's the street address, nearest intersection or highway exit where your car is?",
	},
	LaneOperability: {
		topic: "whether the vehicle can still be driven (a yes or no answer)",
		ask:   "Is the vehicle still drivable?",
		retry: "Just to confirm, can the vehicle still be driven? Please answer yes or no.",
	},
	LaneTowReason: {
		topic: "the reason the vehicle needs to be towed",
		ask:   "What's the main reason the vehicle needs a tow?",
		retry: "Could you describe why the car needs towing, for example it won't start, a flat tire, or collision damage?",
	},
}

func cannedQuestion(l Lane, field form.Field, retry bool) string {
	c, ok := laneCopies[l]
	if !ok {
		label := fieldLabel(field)
		if retry {
			return fmt.Sprintf("Sorry, I didn't catch that. Could you share the %s?", label)
		}
		return fmt.Sprintf("Could you share the %s?", label)
	}
	if retry {
		return c.retry
	}
	return c.ask
}

func laneTopic(l Lane, field form.Field) string {
	if c, ok := laneCopies[l]; ok {
		return c.topic
	}
	return fieldLabel(field)
}

func fieldLabel(f form.Field) string {
	switch f {
	case form.VINNumber:
		return "VIN"
	case form.FullName:
		return "full name"
	}
	return strings.ReplaceAll(string(f), "_", " ")
}

type questionPromptData struct {
	Topic   string
	Known   []promptField
	Missing []string
	Retry   bool
	History []Entry
}

type promptField struct {
	Label string
	Value string
}

var questionTmpl = template.Must(template.New("question").Parse(`You are a calm, friendly roadside assistance agent collecting details for a tow request.

Details already confirmed:
{{- range .Known}}
- {{.Label}}: {{.Value}}
{{- else}}
- none yet
{{- end}}

Details still missing:
{{- range .Missing}}
- {{.}}
{{- end}}

Recent conversation:
{{- range .History}}
{{.Role}}: {{.Content}}
{{- end}}

Ask exactly ONE short question to collect: {{.Topic}}.
{{- if .Retry}}
The user's last answer did not give usable information. Rephrase the question more concretely.
{{- end}}
Do not ask about anything already confirmed. Reply with the question only, in plain text, with no JSON, lists or quotes.`))

var towReasonTmpl = template.Must(template.New("tow_reason").Parse(`You validate answers in a roadside towing intake.
The user was asked why their vehicle needs to be towed and answered:
"""{{.}}"""

Decide whether this is a plausible, specific reason for towing a vehicle
(for example collision damage, engine failure, flat tire without a spare, stuck in a ditch, dead battery, won't start).
Greetings, unrelated chatter, jokes or refusals are not valid.

Respond with a JSON object only: {"is_valid": true or false, "reason": "short explanation"}`))

func renderQuestionPrompt(d questionPromptData) (string, error) {
	var b strings.Builder
	if err := questionTmpl.Execute(&b, d); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderTowReasonPrompt(answer string) (string, error) {
	var b strings.Builder
	if err := towReasonTmpl.Execute(&b, answer); err != nil {
		return "", err
	}
	return b.String(), nil
}

// usableQuestion rejects replies that would leak structure into the transcript.
func usableQuestion(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" || len(q) > 600 {
		return false
	}
	return !strings.HasPrefix(q, "{") && !strings.HasPrefix(q, "[") && !strings.Contains(q, "```")
}
