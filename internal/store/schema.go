package store

// schemaSQL defines the SurrealDB tables. Record ids are the
// application-generated UUID strings, so every query addresses rows
// with type::record.
const schemaSQL = `
    DEFINE TABLE IF NOT EXISTS entity SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS tenant_id ON entity TYPE string;
    DEFINE FIELD IF NOT EXISTS display_name ON entity TYPE string;
    DEFINE FIELD IF NOT EXISTS normalized_name ON entity TYPE string;
    DEFINE FIELD IF NOT EXISTS external_ref ON entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS group_tag ON entity TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS active ON entity TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS created_at ON entity TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS entity_tenant ON entity FIELDS tenant_id;
    DEFINE INDEX IF NOT EXISTS entity_name ON entity FIELDS tenant_id, normalized_name;

    DEFINE TABLE IF NOT EXISTS evidence SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS tenant_id ON evidence TYPE string;
    DEFINE FIELD IF NOT EXISTS author_ref ON evidence TYPE string;
    DEFINE FIELD IF NOT EXISTS raw_text ON evidence TYPE string;
    DEFINE FIELD IF NOT EXISTS summary ON evidence TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS facts ON evidence FLEXIBLE TYPE option<object>;
    DEFINE FIELD IF NOT EXISTS embedding ON evidence TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS linked_entity_ids ON evidence TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS pending_entity_names ON evidence TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS correction ON evidence TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON evidence TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS evidence_tenant ON evidence FIELDS tenant_id;

    DEFINE TABLE IF NOT EXISTS chunk SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS tenant_id ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS document_id ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS document_title ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS index ON chunk TYPE int;
    DEFINE FIELD IF NOT EXISTS text ON chunk TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON chunk TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS page_ref ON chunk TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON chunk TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS chunk_tenant ON chunk FIELDS tenant_id;
    DEFINE INDEX IF NOT EXISTS chunk_document ON chunk FIELDS document_id;

    DEFINE TABLE IF NOT EXISTS conversation SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session_id ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS tenant_id ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS pending ON conversation FLEXIBLE TYPE option<object>;
    DEFINE FIELD IF NOT EXISTS shown_evidence_ids ON conversation TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS discussed_entity_ids ON conversation TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS rolling_summary ON conversation TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS history ON conversation FLEXIBLE TYPE array<object>;
    DEFINE FIELD IF NOT EXISTS turn_count ON conversation TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS updated_at ON conversation TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS conversation_session ON conversation FIELDS session_id UNIQUE;

    DEFINE TABLE IF NOT EXISTS followup SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS tenant_id ON followup TYPE string;
    DEFINE FIELD IF NOT EXISTS entity_id ON followup TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS topic ON followup TYPE string;
    DEFINE FIELD IF NOT EXISTS due_date ON followup TYPE datetime;
    DEFINE FIELD IF NOT EXISTS status ON followup TYPE string DEFAULT "pending";
    DEFINE FIELD IF NOT EXISTS created_at ON followup TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS followup_tenant ON followup FIELDS tenant_id, status;
`
