package mentor

import (
	"fmt"
	"strings"

	"github.com/qpath/qpath/internal/llm"
)

const systemPrompt = `Você é Q-Mentor, um mentor de carreira especializado em tecnologias quântico-seguras e desenvolvimento profissional.
Ajude profissionais a navegar suas carreiras considerando o futuro quântico da tecnologia.`

const guidanceRules = `Diretrizes para resposta:
1. Seja prático e específico
2. Considere a revolução quântica vindoura
3. Sugira passos concretos
4. Mantenha tom motivacional e profissional
5. Limite a resposta a 300 palavras`

const notInformed = "Não informado"

func guidancePrompt(in string, profile map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pergunta do usuário: %s\n", in)
	if len(profile) > 0 {
		b.WriteString("\nPerfil do usuário:\n")
		fmt.Fprintf(&b, "- Nível de experiência: %s\n", profileField(profile, "experience_level"))
		fmt.Fprintf(&b, "- Área de interesse: %s\n", profileField(profile, "career_area"))
		fmt.Fprintf(&b, "- Objetivos: %s\n", profileField(profile, "goals"))
	}
	b.WriteString("\n")
	b.WriteString(guidanceRules)
	return b.String()
}

func profileField(profile map[string]any, key string) string {
	v, ok := profile[key]
	if !ok || v == nil {
		return notInformed
	}
	s := fmt.Sprint(v)
	if s == "" {
		return notInformed
	}
	return s
}

func quickTipsQuery(careerArea string) string {
	return fmt.Sprintf("Dê 3 dicas rápidas e práticas para alguém na área de %s considerando tecnologias quântico-seguras", careerArea)
}

func recommendationsPrompt(careerArea, level string) string {
	return fmt.Sprintf(`Como Q-Mentor, forneça recomendações específicas de carreira quântico-segura para:

Área: %s
Nível: %s

Foque em:
1. Tecnologias quântico-seguras relevantes
2. Habilidades futuras necessárias
3. Cursos e certificações recomendados
4. Projetos práticos para começar
5. Roadmap de 3 a 6 meses

Responda apenas em JSON neste formato:
{"technologies": ["..."], "skills": ["..."], "courses": ["..."], "projects": ["..."], "roadmap": ["mês 1", "mês 2", "mês 3"]}`, careerArea, level)
}

func learningPathPrompt(skills []string, targetRole string) string {
	return fmt.Sprintf(`Como Q-Mentor, analise o gap de habilidades e crie um plano de desenvolvimento:

Habilidades atuais: %s
Objetivo: %s

Analise:
1. Pontos fortes existentes
2. Gaps principais a preencher
3. Prioridades de aprendizado
4. Tempo estimado de transição
5. Passos específicos e práticos

Seja específico e prático, focando em tecnologias quântico-seguras quando relevante.`, strings.Join(skills, ", "), targetRole)
}

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

// recommendationsSchema is the shape a parsed recommendations reply must
// have to be returned as structured data.
var recommendationsSchema = &llm.Schema{
	Name:        "qmentor-recommendations",
	Description: "Recomendações de carreira quântico-segura",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"technologies": stringArray(),
			"skills":       stringArray(),
			"courses":      stringArray(),
			"projects":     stringArray(),
			"roadmap":      stringArray(),
		},
		"required": []any{"technologies", "skills", "courses", "projects", "roadmap"},
	},
}
