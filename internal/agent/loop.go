package agent

import (
	"context"
	"fmt"
	"log"
)

// maxToolRounds caps how many tool-execution rounds a single query may use.
// Tools stay enabled on every round up to the cap so the model can chain
// lookups, e.g. fetch a course outline and then search based on what it
// found. With the forced synthesis call this bounds any query to
// maxToolRounds+1 model calls.
const maxToolRounds = 2

const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to tools for course information.

Tool Usage Guidelines:

**Outline Tool** (get_course_outline):
- Use when users ask about course structure, lesson lists, or "what's in this course"
- Use for questions like "show me the lessons", "what topics are covered", "course overview"
- Returns complete lesson list with links

**Search Tool** (search_course_content):
- Use for questions about specific course content or detailed educational materials
- Use when users need information from within lessons
- Tool calls may be chained: you may use one tool's result to inform a second, different lookup

Response Protocol:
- **General knowledge questions**: Answer using existing knowledge without tools
- **Course structure questions**: Use outline tool first, then answer
- **Course content questions**: Use search tool first, then answer
- **No meta-commentary**: Provide direct answers only - no reasoning process or tool explanations

All responses must be:
1. **Brief, Concise and focused** - Get to the point quickly
2. **Educational** - Maintain instructional value
3. **Clear** - Use accessible language
4. **Example-supported** - Include relevant examples when they aid understanding
Provide only the direct answer to what was asked.`

// ToolRunner executes named tools on the model's behalf. Execution failures
// are returned as readable content rather than errors, so the model can
// explain them to the user.
type ToolRunner interface {
	// Definitions returns the schemas of every registered tool.
	Definitions() []ToolSchema

	// Execute runs a tool by name with raw JSON arguments, returning the
	// result content. Failures come back as content too, never as a fault.
	Execute(ctx context.Context, name, arguments string) string
}

// Generator drives the bounded tool-calling loop: it feeds tool results back
// to the model until the model answers in plain text or the round budget
// runs out, at which point one final tools-disabled call forces a textual
// answer.
type Generator struct {
	llm    LLM
	config LLMConfig
}

// NewGenerator creates a generator backed by the given LLM implementation.
func NewGenerator(llm LLM, config LLMConfig) *Generator {
	return &Generator{
		llm:    llm,
		config: config,
	}
}

// Generate answers a query, consulting the runner's tools as the model
// requests. history, when present, is rendered into the system prompt.
// Tool failures are injected into the transcript as result content; a
// failure of the model call itself aborts the whole query.
func (g *Generator) Generate(ctx context.Context, query, history string, runner ToolRunner) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("%w: LLM is required", ErrInvalidConfig)
	}
	if query == "" {
		return "", fmt.Errorf("%w: query cannot be empty", ErrInvalidConfig)
	}

	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	var schemas []ToolSchema
	if runner != nil {
		schemas = runner.Definitions()
	}

	messages := []Message{{Role: RoleUser, Content: query}}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := g.llm.Chat(ctx, ChatRequest{
			System:   system,
			Messages: messages,
			Tools:    schemas,
		})
		if err != nil {
			return "", err
		}

		if len(resp.ToolCalls) == 0 || runner == nil {
			return resp.Text, nil
		}

		log.Printf("[Agent] Round %d: executing %d tool call(s)", round+1, len(resp.ToolCalls))

		messages = append(messages, Message{
			Role:      RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result := runner.Execute(ctx, call.Name, call.Arguments)
			messages = append(messages, Message{
				Role:       RoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	// Round budget exhausted with the model still asking for tools: force a
	// final synthesis call with tools disabled so the query always ends in
	// a textual answer.
	log.Printf("[Agent] Round budget exhausted, forcing synthesis")
	resp, err := g.llm.Chat(ctx, ChatRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}
