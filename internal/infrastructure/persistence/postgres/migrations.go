package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE COURSES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create course structure tables
-- Version: 001
-- Purpose: Courses, their modules, and the content items progress is folded against

-- Main courses table
CREATE TABLE IF NOT EXISTS courses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    instructor_id UUID NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_courses_instructor ON courses(instructor_id);
CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses(created_at DESC);

-- Modules within a course, ordered by position
CREATE TABLE IF NOT EXISTS course_modules (
    id SERIAL PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    module_id VARCHAR(100) NOT NULL,
    title VARCHAR(255) NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,

    UNIQUE(course_id, module_id)
);

CREATE INDEX IF NOT EXISTS idx_course_modules_course ON course_modules(course_id, position);

-- Content items within a module; (content_id, content_type) is the identity
-- events are matched against
CREATE TABLE IF NOT EXISTS module_contents (
    id SERIAL PRIMARY KEY,
    course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    module_id VARCHAR(100) NOT NULL,
    content_id VARCHAR(100) NOT NULL,
    content_type VARCHAR(20) NOT NULL,
    title VARCHAR(255) NOT NULL DEFAULT '',
    position INTEGER NOT NULL DEFAULT 0,
    metadata JSONB,

    UNIQUE(course_id, module_id, content_id, content_type),
    CONSTRAINT valid_content_type CHECK (content_type IN ('video', 'reading', 'quiz'))
);

CREATE INDEX IF NOT EXISTS idx_module_contents_course ON module_contents(course_id, module_id, position);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_courses_updated_at ON courses;
CREATE TRIGGER update_courses_updated_at
    BEFORE UPDATE ON courses
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_courses_updated_at ON courses;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS module_contents;
DROP TABLE IF EXISTS course_modules;
DROP TABLE IF EXISTS courses;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE EVENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create learning events table
-- Version: 002
-- Purpose: Append-only stream of raw learner interactions; never updated or deleted

CREATE TABLE IF NOT EXISTS learning_events (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    course_id UUID NOT NULL,
    module_id VARCHAR(100) NOT NULL,
    content_id VARCHAR(100) NOT NULL,
    content_type VARCHAR(20) NOT NULL,
    event_type VARCHAR(20) NOT NULL,
    percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
    time_spent INTEGER NOT NULL DEFAULT 0,
    metadata JSONB,
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_event_content_type CHECK (content_type IN ('video', 'reading', 'quiz')),
    CONSTRAINT valid_event_type CHECK (event_type IN ('watch', 'scroll', 'submit')),
    CONSTRAINT valid_percentage CHECK (percentage >= 0 AND percentage <= 100),
    CONSTRAINT valid_time_spent CHECK (time_spent >= 0)
);

-- Recompute reads the full pair history newest-first
CREATE INDEX IF NOT EXISTS idx_learning_events_pair ON learning_events(user_id, course_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_learning_events_user ON learning_events(user_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_learning_events_occurred_at ON learning_events(occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_learning_events_content ON learning_events(course_id, content_id, content_type);
`

const migration002Down = `
DROP TABLE IF EXISTS learning_events;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE PROGRESS SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create progress snapshots table
-- Version: 003
-- Purpose: Derived per-user per-course progress; replaced wholesale on recompute

CREATE TABLE IF NOT EXISTS progress_snapshots (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL,
    course_id UUID NOT NULL,
    modules JSONB NOT NULL DEFAULT '[]'::jsonb,
    overall_progress DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_time_spent INTEGER NOT NULL DEFAULT 0,
    last_activity TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, course_id),
    CONSTRAINT valid_overall_progress CHECK (overall_progress >= 0 AND overall_progress <= 100),
    CONSTRAINT valid_total_time_spent CHECK (total_time_spent >= 0)
);

CREATE INDEX IF NOT EXISTS idx_progress_snapshots_user ON progress_snapshots(user_id, last_activity DESC);
CREATE INDEX IF NOT EXISTS idx_progress_snapshots_course ON progress_snapshots(course_id);
CREATE INDEX IF NOT EXISTS idx_progress_snapshots_completed ON progress_snapshots(course_id) WHERE overall_progress >= 100;

DROP TRIGGER IF EXISTS update_progress_snapshots_updated_at ON progress_snapshots;
CREATE TRIGGER update_progress_snapshots_updated_at
    BEFORE UPDATE ON progress_snapshots
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration003Down = `
DROP TRIGGER IF EXISTS update_progress_snapshots_updated_at ON progress_snapshots;
DROP TABLE IF EXISTS progress_snapshots;
`
