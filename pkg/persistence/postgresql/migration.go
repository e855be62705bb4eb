package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				company_id VARCHAR(255) NOT NULL,
				phase_id VARCHAR(255),
				name VARCHAR(255) NOT NULL,
				description TEXT,
				status VARCHAR(50) NOT NULL,
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflows_company_id ON workflows(company_id);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			CREATE TABLE workflow_stages (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				name VARCHAR(255) NOT NULL,
				stage_type VARCHAR(20) NOT NULL CHECK (stage_type IN ('INITIAL', 'STANDARD', 'SUCCESS', 'FAIL')),
				stage_order INTEGER NOT NULL CHECK (stage_order >= 0),
				allow_skip BOOLEAN NOT NULL DEFAULT FALSE,
				estimated_duration INTEGER NOT NULL DEFAULT 0,
				default_role_id VARCHAR(255),
				default_user_id VARCHAR(255),
				email_template_id VARCHAR(255),
				deadline_days INTEGER CHECK (deadline_days IS NULL OR deadline_days >= 1),
				estimated_cost NUMERIC(12, 2),
				next_phase_id VARCHAR(255),
				field_visibility JSONB,
				field_validation JSONB,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (workflow_id, stage_order)
			);

			CREATE INDEX idx_workflow_stages_workflow_id ON workflow_stages(workflow_id);
			CREATE INDEX idx_workflow_stages_stage_type ON workflow_stages(stage_type);

			CREATE TABLE custom_fields (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				field_key VARCHAR(255) NOT NULL,
				field_name VARCHAR(255) NOT NULL,
				field_type VARCHAR(20) NOT NULL,
				field_config JSONB,
				order_index INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (workflow_id, field_key)
			);

			CREATE INDEX idx_custom_fields_workflow_id ON custom_fields(workflow_id);

			CREATE TABLE field_configurations (
				id UUID PRIMARY KEY,
				stage_id UUID NOT NULL,
				custom_field_id UUID NOT NULL,
				visibility VARCHAR(20) NOT NULL CHECK (visibility IN ('VISIBLE', 'HIDDEN', 'READ_ONLY', 'REQUIRED')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (stage_id, custom_field_id)
			);

			CREATE INDEX idx_field_configurations_stage_id ON field_configurations(stage_id);

			CREATE TABLE validation_rules (
				id UUID PRIMARY KEY,
				custom_field_id UUID NOT NULL,
				stage_id UUID NOT NULL,
				rule_type VARCHAR(30) NOT NULL,
				comparison_operator VARCHAR(20) NOT NULL,
				position_field_path VARCHAR(500),
				comparison_value JSONB,
				severity VARCHAR(10) NOT NULL CHECK (severity IN ('WARNING', 'ERROR')),
				validation_message TEXT,
				auto_reject BOOLEAN NOT NULL DEFAULT FALSE,
				rejection_reason TEXT,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_validation_rules_stage_id ON validation_rules(stage_id);
			CREATE INDEX idx_validation_rules_custom_field_id ON validation_rules(custom_field_id);

			CREATE TABLE candidates (
				id UUID PRIMARY KEY,
				position_id VARCHAR(255) NOT NULL,
				company_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255),
				status VARCHAR(20) NOT NULL,
				current_phase_id VARCHAR(255),
				current_workflow_id VARCHAR(255),
				current_stage_id VARCHAR(255),
				phase_workflows JSONB,
				field_values JSONB,
				rejection_reason TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_candidates_position_id ON candidates(position_id);
			CREATE INDEX idx_candidates_current_stage_id ON candidates(current_stage_id);

			CREATE TABLE stage_records (
				id UUID PRIMARY KEY,
				candidate_id UUID NOT NULL,
				phase_id VARCHAR(255),
				workflow_id VARCHAR(255) NOT NULL,
				stage_id VARCHAR(255) NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				deadline TIMESTAMP WITH TIME ZONE,
				estimated_cost NUMERIC(12, 2),
				actual_cost NUMERIC(12, 2),
				comment TEXT,
				data JSONB
			);

			CREATE INDEX idx_stage_records_candidate_id ON stage_records(candidate_id);
			CREATE INDEX idx_stage_records_completed_at ON stage_records(completed_at);
			CREATE INDEX idx_stage_records_deadline ON stage_records(deadline);
		`,
	}
}
