package summarize

import "fmt"

// SystemPrompt frames every summarization query
const SystemPrompt = `You are an AI assistant that processes raw thought stream data.
Your task is to analyze unstructured daily thoughts and extract structured information.
Be concise and organized in your output.`

const journalPromptTemplate = `Analyze the following raw thought stream from my day.
Extract and organize the information into these categories:

1. **Journal Entries** - Key thoughts, reflections, or discussions
2. **Action Items** - Tasks, todo items, or things I need to do
3. **Technical Ideas** - Technical concepts, code ideas, or learnings

Format your response as clean Markdown.

Raw thought stream:
` + "```" + `
%s
` + "```" + `

Provide a structured summary:`

const actionItemsPromptTemplate = `From the following thought stream, extract ONLY the action items/tasks.
Return them as a bullet list. If none exist, say "No action items found."

Thought stream:
` + "```" + `
%s
` + "```" + `
`

const technicalIdeasPromptTemplate = `From the following thought stream, extract ONLY technical ideas, concepts, or code-related thoughts.
Return them as a bullet list. If none exist, say "No technical ideas found."

Thought stream:
` + "```" + `
%s
` + "```" + `
`

// JournalPrompt builds the journal extraction prompt
func JournalPrompt(content string) string {
	return fmt.Sprintf(journalPromptTemplate, content)
}

// ActionItemsPrompt builds the action item extraction prompt
func ActionItemsPrompt(content string) string {
	return fmt.Sprintf(actionItemsPromptTemplate, content)
}

// TechnicalIdeasPrompt builds the technical idea extraction prompt
func TechnicalIdeasPrompt(content string) string {
	return fmt.Sprintf(technicalIdeasPromptTemplate, content)
}
