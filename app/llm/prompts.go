package llm

// Default prompt templates. The placeholders {text}, {article_text} and
// {question} are substituted before the request is sent; user-provided
// templates missing their required placeholder fall back to these.

const DefaultSummaryPrompt = `Task: Generate a concise, narrative summary of the following article. The output must be Markdown-formatted and optimized for scannability and low cognitive load.

Format:
Key Takeaways (1-3 labeled bullets):
Present the most critical facts as * bullets, each prefixed with a bold semantic label (Who:, What:, Where:, When:, Why:, How:, Impact:, Context:, Next:). Keep each bullet under 15 words and bold the 1-3 most crucial words.
Narrative Context (3-5 sentences):
Follow with one coherent paragraph. Open with the primary significance, then connect the takeaways with context or deeper meaning rather than repeating them.

Style: active voice, strong verbs, simple direct language. Objective, professional tone.

Article:{text}
Summary:`

const DefaultChatPrompt = `Persona & Goal: You are an insightful AI analyst helping the user explore the provided article in depth, beyond its summary.

Instructions:
Ground your core answer firmly in the article; reference specific points where that adds clarity, and say so explicitly when the article does not cover the question.
Synthesize rather than extract: connect ideas within the article and enrich the answer with relevant general knowledge.
Use Markdown (bold key terms, * bullets for lists) to keep the answer scannable.
End by inviting further interaction: a follow-up question or a related angle worth exploring.

Article:{article_text}
Question: {question}
Answer:`

const DefaultChatNoArticlePrompt = `You are a helpful AI assistant. The user is asking a question, but the content of the article could not be loaded.
Politely inform the user that you cannot answer their question without the article content.

User's Question: {question}

Response:`

const DefaultTagGenerationPrompt = `Given the following article text, generate a list of 3-5 relevant keywords or tags.
These tags should capture the main topics, entities, or themes of the article.
Return the tags as a comma-separated list. For example: "Technology,Artificial Intelligence,Startups,Venture Capital,Innovation"

Article:
{text}

Tags:`
