package papyrus

import "fmt"

const (
	analyzeSystem = "You are a professional document formatting expert. Analyze text and provide specific, actionable suggestions for creating well-structured PDF documents."
	enhanceSystem = "You are a professional document editor. Apply formatting suggestions to create well-structured markdown content."
	extractSystem = "You are a data extraction expert. Identify numerical data in text that would benefit from visualization."
	diagramSystem = "You are a diagram expert. Create clear, informative diagrams using mermaid.js syntax."
)

func analyzePrompt(text string, format Format) string {
	return fmt.Sprintf(`Analyze the following %s text and suggest improvements for turning it into a professional PDF document.

Text to analyze:
"""
%s
"""

Cover: structure (headings, sections), formatting (lists, emphasis),
data visualization (tables, charts, diagrams), typography, and content gaps.

Reply with JSON only, shaped as:
{
  "suggestions": [
    {"type": "heading", "position": "line or snippet", "current": "...", "suggested": "...", "level": 1, "reasoning": "..."},
    {"type": "list", "position": "...", "current": "...", "suggested": "* a\n* b", "listType": "bullet|numbered", "reasoning": "..."},
    {"type": "table", "position": "...", "current": "...", "suggested": "markdown table", "reasoning": "..."},
    {"type": "chart", "position": "...", "current": "...", "chartType": "bar|line|pie|scatter", "data": "values to plot", "reasoning": "..."},
    {"type": "diagram", "position": "...", "current": "...", "diagramType": "flowchart|sequence|class|state|gantt", "description": "...", "reasoning": "..."}
  ],
  "overall_structure": {"title": "...", "sections": ["..."], "estimated_pages": 1, "document_type": "report|article|manual|presentation"},
  "typography": {"font_suggestions": ["..."], "style_recommendations": ["..."]}
}`, format, text)
}

func enhancePrompt(text string, format Format, suggestions string) string {
	return fmt.Sprintf(`Apply these suggestions to the following %s text and return the result as markdown.

Original text:
"""
%s
"""

Suggestions:
%s

Use # headings, formatted lists and tables where suggested. Mark charts as
[CHART: description] and diagrams as [DIAGRAM: description]. Keep the
original meaning.`, format, text, suggestions)
}

func extractPrompt(text string) string {
	return fmt.Sprintf(`Extract numerical data from the following text that would make meaningful charts.

"""
%s
"""

Reply with JSON only, shaped as:
{
  "charts": [
    {
      "title": "Chart title",
      "type": "bar|line|pie|scatter",
      "data": {"labels": ["a", "b"], "datasets": [{"label": "Series", "data": [1, 2]}]},
      "context": "text the data came from",
      "position": "approximate location"
    }
  ]
}
Return an empty charts array when nothing is worth plotting.`, text)
}

func diagramPrompt(text string, kind DiagramType) string {
	return fmt.Sprintf(`Create a %s diagram of the following text as mermaid.js source.

"""
%s
"""

Flowcharts start with "graph TD" or "graph LR", sequence diagrams with
"sequenceDiagram", class diagrams with "classDiagram", state diagrams with
"stateDiagram-v2" and gantt charts with "gantt". Reply with the mermaid
source only.`, kind, text)
}
