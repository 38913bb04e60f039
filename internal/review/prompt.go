package review

import (
	"fmt"
	"strings"
)

const baseSystemPrompt = `You are a strict, zero-trust expert code reviewer. Your job is to verify code written by another AI assistant and catch what it missed.

Rules:
1. Assume nothing works until proven. Look for bugs, security issues (OWASP), performance problems, correctness issues, and architectural flaws.
2. Be concise and actionable. Every issue must include a concrete fix.
3. Rate severity: CRITICAL (breaks or exposes), WARNING (likely problem), SUGGESTION (improvement).
4. If the code is sound, say so explicitly; do not invent issues.
5. End with a one-line verdict: APPROVED, APPROVED WITH NOTES, or NEEDS CHANGES.`

var modeInstructions = map[Mode]string{
	ModeSingle:   "You are reviewing one complete source file.",
	ModeDiff:     "You are reviewing a git diff. Only review the changed lines and their immediate context; do not comment on unchanged code.",
	ModeMultiple: "You are reviewing multiple files changed together. Check cross-file consistency: signatures, imports, shared types, and call sites must agree.",
}

// BuildSystemPrompt assembles the system prompt from the base reviewer
// rules, the mode instruction, language hints, and the optional project
// stack.
func BuildSystemPrompt(mode Mode, filePaths []string, stack *ProjectStack) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if instr, ok := modeInstructions[mode]; ok {
		b.WriteString("\n\n")
		b.WriteString(instr)
	}

	if langs := detectLanguages(filePaths); len(langs) > 0 {
		fmt.Fprintf(&b, "\n\nLanguages under review: %s. Apply language-specific checks for each.", strings.Join(langs, ", "))
	}

	if section := stackSection(stack); section != "" {
		b.WriteString("\n\n")
		b.WriteString(section)
	}

	return b.String()
}

// BuildUserMessage assembles the user message from task context, session
// changes, and the formatted code content.
func BuildUserMessage(taskContext, sessionChanges, codeContent string) string {
	var b strings.Builder

	b.WriteString("## Task Context\n")
	b.WriteString(taskContext)
	b.WriteString("\n")

	if sessionChanges != "" {
		b.WriteString("\n## Session Changes\n")
		b.WriteString(sessionChanges)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(codeContent)
	b.WriteString("\n")

	return b.String()
}

func stackSection(stack *ProjectStack) string {
	if stack == nil {
		return ""
	}
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
	}
	add("Framework", stack.Framework)
	add("Frontend", stack.Frontend)
	add("Backend", stack.Backend)
	add("Database", stack.Database)
	add("Conventions", stack.Conventions)
	add("Architecture", stack.Architecture)
	if len(lines) == 0 {
		return ""
	}
	return "Project stack:\n" + strings.Join(lines, "\n") + "\nVerify the code against this stack's idioms and versions."
}

func detectLanguages(files []string) []string {
	langMap := []struct {
		ext  string
		lang string
	}{
		{".go", "Go"},
		{".py", "Python"},
		{".js", "JavaScript"},
		{".ts", "TypeScript"},
		{".tsx", "TypeScript/React"},
		{".jsx", "JavaScript/React"},
		{".vue", "Vue"},
		{".rs", "Rust"},
		{".java", "Java"},
		{".php", "PHP"},
		{".rb", "Ruby"},
		{".sql", "SQL"},
		{".sh", "Shell"},
		{".yaml", "YAML"},
		{".yml", "YAML"},
	}

	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		for _, m := range langMap {
			if strings.HasSuffix(f, m.ext) && !seen[m.lang] {
				seen[m.lang] = true
				langs = append(langs, m.lang)
			}
		}
	}
	return langs
}
