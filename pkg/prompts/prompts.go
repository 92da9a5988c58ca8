package prompts

import (
	"fmt"
	"strings"
	"time"
)

// DataCutoffDate is the last date with data in the warehouse snapshot.
// Questions about "today" are answered against this date.
const DataCutoffDate = "2025-11-10"

// BuildAnswerPrompt creates the prompt for answering an ad-hoc CRM question.
// The model writes a SQL query, runs it via the run_sql tool, and summarizes
// the result in Indonesian.
func BuildAnswerPrompt(question string) string {
	var prompt strings.Builder

	prompt.WriteString("You are an expert data analyst with access to a SQL database.\n")
	prompt.WriteString(fmt.Sprintf("Given an input question, write a syntactically correct %s SQL query to answer it,\n", Dialect))
	prompt.WriteString("then interpret the query result to provide a concise natural-language answer **in Indonesian**.\n\n")

	prompt.WriteString(SchemaCheatSheet)
	prompt.WriteString("\n\n")

	prompt.WriteString("Follow this format strictly:\n")
	prompt.WriteString("Question: <user question>\n")
	prompt.WriteString("SQLQuery: <SQL statement>   (omit unless the user explicitly asks for the SQL)\n")
	prompt.WriteString("SQLResult: <real results as a well-formatted markdown table with headers>\n")
	prompt.WriteString("Answer: <final natural language answer in Indonesian, summarizing the table>\n\n")

	prompt.WriteString("Rules:\n")
	prompt.WriteString("- Only use tables and columns from the schema above.\n")
	prompt.WriteString("- Prefer selecting limited, relevant columns (avoid SELECT *).\n")
	prompt.WriteString("- Use backticks \"`\" when you want to specify the table name in the SQL query, for example \"`lead`\" instead of just \"lead\".\n")
	prompt.WriteString("- The environment only allows one SQL statement execution at a time, do not try to execute two or more at the same time.\n")
	prompt.WriteString("- Use LIMIT 10 unless otherwise specified (explicitly or implicitly).\n")
	prompt.WriteString("- Use DISTINCT when helpful.\n")
	prompt.WriteString("- Qualify column names when needed.\n")
	prompt.WriteString("- Column values are case-sensitive. Match the exact casing shown in the schema (e.g., customer_type = 'CORPORATE').\n")
	prompt.WriteString("- Never hallucinate columns or tables.\n")
	prompt.WriteString(fmt.Sprintf("- Data cutoff date is %s, any data after this date is not considered.\n", DataCutoffDate))
	prompt.WriteString(fmt.Sprintf("- If the user asks for today's data, present them with the latest data which is on %s. So, if they ask for yesterday's data, present them with the data from the day before that.\n\n", DataCutoffDate))

	prompt.WriteString(fmt.Sprintf("Question: %s\n", question))
	prompt.WriteString("SQLQuery:")

	return prompt.String()
}

// BuildSegmentSQLPrompt creates the SQL-only prompt for segment generation.
// Date arithmetic is anchored to now so the generated SQL carries hardcoded
// dates instead of CURDATE()-style expressions that drift after the view is
// materialized.
func BuildSegmentSQLPrompt(description string, now time.Time) string {
	currentDate := now.Format("2006-01-02")

	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Given an input question, create a syntactically correct %s query to run.\n\n", Dialect))
	prompt.WriteString(fmt.Sprintf("TODAY'S DATE: %s\n\n", currentDate))

	prompt.WriteString("IMPORTANT RULES:\n")
	prompt.WriteString("1. For time-based filters (e.g., \"6 months ago\", \"last year\"):\n")
	prompt.WriteString("   - Calculate the exact date based on TODAY'S DATE above\n")
	prompt.WriteString("   - Use DATE('YYYY-MM-DD') function with hardcoded dates\n")
	prompt.WriteString("   - Example: If today is 2025-12-28 and query asks for \"6 months ago\", use DATE('2025-06-28')\n")
	prompt.WriteString("   - Do NOT use DATE_SUB, CURDATE(), NOW(), or any dynamic date functions\n\n")

	prompt.WriteString("2. SQL format:\n")
	prompt.WriteString("   - Return ONLY the SQL query, nothing else\n")
	prompt.WriteString("   - Do NOT include markdown code blocks (no ```)\n")
	prompt.WriteString("   - Do NOT include semicolon (;) at the end\n")
	prompt.WriteString("   - Do NOT include any comments or explanations\n")
	prompt.WriteString("   - Use proper table aliases for clarity\n\n")

	prompt.WriteString("3. Required output columns for customer segments:\n")
	prompt.WriteString("   - Always SELECT: custid, custcode, custname, custemail, mobileno\n")
	prompt.WriteString("   - Use table alias 'c' for customer table\n\n")

	prompt.WriteString("Here is the relevant table info:\n")
	prompt.WriteString(SegmentSchema)
	prompt.WriteString("\n\n")

	prompt.WriteString(fmt.Sprintf("Question: %s\n", description))
	prompt.WriteString("SQLQuery: ")

	return prompt.String()
}

// BuildSegmentGeneratePrompt creates the single-call prompt that returns a
// segment name and SQL together as JSON. Used by the preview endpoint.
func BuildSegmentGeneratePrompt(description string) string {
	var prompt strings.Builder

	prompt.WriteString("Based on this segment description, generate:\n")
	prompt.WriteString("1. A SQL query that returns customer data matching the criteria\n")
	prompt.WriteString("2. A short name for this segment (max 50 chars, in Indonesian)\n\n")

	prompt.WriteString(fmt.Sprintf("Description: %q\n\n", description))

	prompt.WriteString("Requirements for SQL:\n")
	prompt.WriteString("- Must return: custid, custname, custemail, mobileno\n")
	prompt.WriteString("- Include calculated fields if relevant: last_transaction_date, total_spending, transaction_count\n")
	prompt.WriteString("- Use appropriate JOINs between customer and invoice tables\n")
	prompt.WriteString("- Apply filters based on the description\n")
	prompt.WriteString("- Do NOT use LIMIT unless specified in the description\n")
	prompt.WriteString("- Use MySQL syntax (backticks for identifiers, LIMIT for row limiting)\n\n")

	prompt.WriteString("SCHEMA REFERENCE (clonecrm):\n")
	prompt.WriteString("- customer: custid PK, custcode, custname, custemail, mobileno, custtype, custtypedetail, joindate, birthday, cityid, branchno, status ACTIVE/INACTIVE\n")
	prompt.WriteString("- invoice: invno PK, invoiceno, custid, branchno, invdate, invoicestatus {PAID, OUTS, VOID}, balanceinvoice, discount, taxes, product (HT/TK/TR/DO/OT)\n")
	prompt.WriteString("- customertype: custtype PK (1-7), custtypename\n")
	prompt.WriteString("- customertypedtl: custtypedetail PK (1-8), custtypedetailname (FIT=2, CORPORATE=6)\n\n")

	prompt.WriteString("Return in this exact JSON format:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"name\": \"Short segment name in Indonesian\",\n")
	prompt.WriteString("  \"sql\": \"SELECT ... FROM ... WHERE ...\"\n")
	prompt.WriteString("}\n\n")

	prompt.WriteString("JSON Response:")

	return prompt.String()
}

// BuildSegmentMetadataPrompt creates the prompt for naming a segment after
// its SQL has been generated and validated.
func BuildSegmentMetadataPrompt(description, sql string) string {
	var prompt strings.Builder

	prompt.WriteString("Based on the following segment description and SQL query, generate a short name and detailed description in Indonesian.\n\n")
	prompt.WriteString(fmt.Sprintf("User's segment description: %s\n\n", description))
	prompt.WriteString(fmt.Sprintf("Generated SQL query: %s\n\n", sql))

	prompt.WriteString("Return a JSON object with exactly these keys:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"name\": \"Short segment name in Indonesian (max 50 chars)\",\n")
	prompt.WriteString("  \"description\": \"Detailed explanation of what this segment contains in Indonesian\"\n")
	prompt.WriteString("}\n\n")

	prompt.WriteString("Only return the JSON, no markdown formatting or additional text.")

	return prompt.String()
}

// BuildPersonalityPrompt creates the prompt for customer personality analysis.
// The prompt and the expected output are in Indonesian.
func BuildPersonalityPrompt(customerData string) string {
	var prompt strings.Builder

	prompt.WriteString("Anda adalah analis CRM yang berpengalaman di industri travel. Berdasarkan data pelanggan berikut, buatlah analisis kepribadian dan preferensi pelanggan.\n\n")

	prompt.WriteString("Data Pelanggan:\n")
	prompt.WriteString(customerData)
	prompt.WriteString("\n\n")

	prompt.WriteString("Analisis dan hasilkan dalam format JSON dengan struktur berikut:\n\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"summary\": \"Ringkasan singkat tentang pelanggan ini (pola perjalanan, tipe pelanggan, tingkat engagement). Tulis dalam 2-3 kalimat dalam Bahasa Indonesia.\",\n")
	prompt.WriteString("  \"preferences\": \"Preferensi perjalanan yang dapat disimpulkan (destinasi favorit, gaya perjalanan, tier anggaran). Tulis dalam 2-3 kalimat dalam Bahasa Indonesia.\"\n")
	prompt.WriteString("}\n\n")

	prompt.WriteString("Pertimbangkan faktor-faktor berikut dalam analisis:\n")
	prompt.WriteString("- Frekuensi transaksi dan total pengeluaran\n")
	prompt.WriteString("- Jenis produk yang sering dibeli (tiket pesawat, hotel, tour, dll)\n")
	prompt.WriteString("- Tanggal bergabung dan aktivitas terakhir\n")
	prompt.WriteString("- Status pelanggan (aktif/tidak aktif)\n")
	prompt.WriteString("- Tipe pelanggan (FIT/Corporate)\n\n")

	prompt.WriteString("Berikan analisis yang realistis dan actionable untuk tim marketing.\n\n")
	prompt.WriteString("Hanya kembalikan JSON, tanpa markdown formatting atau teks tambahan.")

	return prompt.String()
}
