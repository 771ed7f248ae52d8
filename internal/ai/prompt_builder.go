package ai

import (
	"fmt"
	"strings"
)

// BuildExcusePrompt — формирует prompt для генерации отмазки
func BuildExcusePrompt(scenario, urgency, style string) string {

	var b strings.Builder

	if style == "professional" {
		b.WriteString("You are a professional excuse generator. Generate a realistic and responsible excuse.\n\n")
	} else {
		b.WriteString("You are a creative excuse generator. Generate a fun, clever, or imaginative excuse.\n\n")
	}

	b.WriteString("Scenario: ")
	b.WriteString(scenario)
	b.WriteString("\n")

	b.WriteString("Urgency: ")
	b.WriteString(urgency)
	b.WriteString("\n\n")

	b.WriteString("Rules:\n")
	if style == "professional" {
		b.WriteString("- Be practical and believable.\n")
		b.WriteString("- Avoid anything imaginary or exaggerated.\n")
		b.WriteString("- Keep it short and polite.\n")
	} else {
		b.WriteString("- Be witty, dramatic or unusual, but still make some sense.\n")
		b.WriteString("- Can include exaggeration or humor.\n")
	}
	b.WriteString("- One or two sentences only.\n")

	return b.String()
}

// BuildApologyPrompt — формирует prompt для извинения
func BuildApologyPrompt(situation, tone, typ, style string) string {
	return fmt.Sprintf(
		"Write a %s apology in a %s tone and %s style. Context: %s",
		strings.ToLower(typ), strings.ToLower(tone), strings.ToLower(style), situation,
	)
}

// BuildGuiltPrompt asks for a bucketed 1-100 score in strict JSON so the
// answer stays parseable even at high temperature.
func BuildGuiltPrompt(text string) string {
	var b strings.Builder

	b.WriteString("Calibrate on this rubric:\n")
	b.WriteString("  1-20  : clearly insincere / no guilt\n")
	b.WriteString("  21-40 : weak apology / low guilt\n")
	b.WriteString("  41-60 : neutral / average guilt\n")
	b.WriteString("  61-80 : sincere but not extreme\n")
	b.WriteString("  81-100: very strong guilt / deeply sorry\n\n")
	b.WriteString("You must answer in **exactly** this JSON format:\n")
	b.WriteString(`{ "score": <number>, "reason": "<short explanation>" }`)
	b.WriteString("\n\nApology text:\n")
	b.WriteString(text)
	b.WriteString("\n----\nNow respond:")

	return b.String()
}
