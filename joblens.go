// Package joblens provides an extraction engine that reads a job posting
// page and asks a local text-inference capability to pull out structured
// data (hiring company, job title, description, and related fields).
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., gemini/, ollama/, sqlite/), and the
// orchestration engine lives in extract/.
package joblens
