// Package services implements the driving ports: document ingestion,
// indexing, analysis, grounded Q&A, question suggestions, health and
// settings.
//
// Services talk to models, stores and indexes only through driven port
// interfaces. Completion calls go through callPolicy, which
// bounds each attempt by the configured engine timeout and allows one retry.
package services
