package prompts

// Dialect is the SQL dialect of the CRM store.
const Dialect = "MySQL"

// SchemaCheatSheet is the full schema reference embedded verbatim in the
// ad-hoc query prompt. It is never summarized or truncated so the model
// cannot hallucinate table or column names.
const SchemaCheatSheet = `SCHEMA REFERENCE (clonecrm cheat sheet):
- Branches, customers, leads, invoices, and products are joined via these keys:
  * branch.branchno ⇄ customer.branchno, invoice.branchno
  * city.cityid ⇄ customer.cityid; city.countryid/stateid give geo hierarchy
  * customer.custid ⇄ invoice.custid, lead.custid, customer_area.custid
  * customertype.custtype (1–7) and customertypedtl.custtypedetail (1–8) classify customers
  * product.prodcode (DO, HT, OT, TK, TR) ⇄ productdtl.proddtlcode (e.g., TKTD, TRPD)
  * invoice.invno ⇄ invoice_* line tables (DO/HT/OT/TK/TR/TRADD)
  * ticket/tour codes: invoice_tk.faretype → tkfaretype.faretypecode; tickettype → tktype.tktypecode
- Key tables:
  * customer: custid PK, custcode, custname, custtype (→ customertype), custtypedetail (via mapping to customertypedtl), joindate, birthday, mobileno, cityid, branchno, status ACTIVE/INACTIVE.
  * lead: leadid PK, contact info, leadsource (Instagram, TikTok, Facebook, Survey, Email, Pameran, Greta), product interest, custid (optional link to customer).
  * invoice: invno PK, invoiceno, custid, branchno, invdate, invoicestatus {PAID, OUTS, VOID}, balanceinvoice/discount/taxes, product (HT/TK/TR/DO/OT), currid (often IDR).
  * product/productdtl: prodcode (DO/HT/OT/TK/TR) and proddtlcode (e.g., TKTD, TRPD, HTHD).
  * branch: branchno PK, name, basecurr (IDR), city/state/country ids.
  * city: cityid PK, citycode/citydesc, countryid/stateid.
- Currency: monetary fields are IDR unless currid overrides.
- Customer segmentation (Recency/Frequency/Monetary) exists but is derived; use invoice dates and balanceinvoice if needed.
- Sales data should use the field balanceinvoice from the table invoice as the DEFAULT TOTAL SELL data of the invoice.
- Do not dedupe customers by name; custid is the truth key. Fits vs corporate: customertypedtl=2 is FIT NON CORPORATE (retail); 6 is CORPORATE.`

// SegmentSchema is the condensed schema reference used for segment SQL
// generation. The invoice date column note exists because models repeatedly
// invent "invoicedate".
const SegmentSchema = `Database schema:
- customer table: custid (PK, int), custcode, custname, custemail, mobileno, status (ACTIVE/INACTIVE), joindate, birthday, branchno, cityid
- invoice table: invno (PK), invoiceno, custid (FK to customer), invdate (date - use this for transaction dates!), balanceinvoice, invoicestatus (PAID/OUTS/VOID), branchno

IMPORTANT: The invoice date column is "invdate", NOT "invoicedate"!`
