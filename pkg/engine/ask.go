package engine

import "fmt"

const askVaultPromptTemplate = `Based on the following context from the user's vault, answer their question.

Context:
%s

Question: %s

Provide a clear, helpful answer based only on the context provided. If the context doesn't contain enough information to answer the question, say so.`

// AskVaultPrompt builds the question-answering prompt from retrieved vault
// context and the user's question.
func AskVaultPrompt(vaultContext, question string) string {
	return fmt.Sprintf(askVaultPromptTemplate, vaultContext, question)
}
