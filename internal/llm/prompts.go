package llm

const classifyPrompt = `You are a research query router. Decide which research capabilities the following query needs:
- "web": news, current events, product information, general web content
- "academic": papers, studies, preprints, scholarly literature
- "multimodal": video, audio, images, charts, recorded talks

A query may need more than one capability.

Respond ONLY with a JSON array of capability names. No markdown, no explanation. Example:
["web","academic"]

Query:
%s`

const contradictionPrompt = `Do these two statements contradict each other?
Statement A: %s
Statement B: %s

Answer only "true" or "false". No explanation.`

const summaryPrompt = `You are a research summarizer. Given a query and the validated findings below, produce a single concise executive summary that answers the query.

Each finding is tagged with its source capability:
- [ACADEMIC] = scholarly literature
- [WEB] = news and web content
- [MULTIMODAL] = video, audio, or image analysis

Weight [ACADEMIC] findings more heavily for factual precision.

Query: %s

Findings:
%s

Respond with ONLY the summary text. No explanation, no formatting.`
