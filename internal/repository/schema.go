package repository

// Schema lists the idempotent DDL for the normalized store. Every derived
// column is nullable: raw imports populate only the raw columns and each
// enrichment tier layers its whole field set in afterwards.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS market_data_daily (
		ticker VARCHAR NOT NULL,
		date DATE NOT NULL,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume DOUBLE,
		prior_close DOUBLE,
		gap_pct DOUBLE,
		intraday_range_pct DOUBLE,
		intraday_return_pct DOUBLE,
		total_return_pct DOUBLE,
		close_position_in_range DOUBLE,
		gap_filled INTEGER,
		return_5d DOUBLE,
		return_20d DOUBLE,
		prev_return_pct DOUBLE,
		consecutive_days INTEGER,
		rsi_14 DOUBLE,
		atr_pct DOUBLE,
		price_vs_ema21_pct DOUBLE,
		price_vs_sma50_pct DOUBLE,
		bb_upper DOUBLE,
		bb_lower DOUBLE,
		bb_position DOUBLE,
		realized_vol_5d DOUBLE,
		realized_vol_20d DOUBLE,
		trend_score INTEGER,
		day_of_week INTEGER,
		month INTEGER,
		is_opex INTEGER,
		high_time DOUBLE,
		low_time DOUBLE,
		high_before_low INTEGER,
		reversal_type INTEGER,
		opening_drive_strength DOUBLE,
		intraday_realized_vol DOUBLE,
		PRIMARY KEY (ticker, date)
	)`,
	`CREATE TABLE IF NOT EXISTS market_context (
		date DATE NOT NULL,
		vix_open DOUBLE,
		vix_high DOUBLE,
		vix_low DOUBLE,
		vix_close DOUBLE,
		vix9d_open DOUBLE,
		vix9d_close DOUBLE,
		vix3m_open DOUBLE,
		vix3m_close DOUBLE,
		vix_change_pct DOUBLE,
		vix_gap_pct DOUBLE,
		vix_spike_pct DOUBLE,
		vix_rth_open DOUBLE,
		vix9d_change_pct DOUBLE,
		vix3m_change_pct DOUBLE,
		vix9d_vix_ratio DOUBLE,
		vix_vix3m_ratio DOUBLE,
		vol_regime INTEGER,
		term_structure_state INTEGER,
		vix_percentile DOUBLE,
		PRIMARY KEY (date)
	)`,
	`CREATE TABLE IF NOT EXISTS market_data_intraday (
		ticker VARCHAR NOT NULL,
		date DATE NOT NULL,
		time VARCHAR NOT NULL,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		PRIMARY KEY (ticker, date, time)
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		block_id VARCHAR NOT NULL,
		strategy VARCHAR,
		date_opened DATE,
		time_opened VARCHAR,
		date_closed DATE,
		time_closed VARCHAR,
		premium DOUBLE,
		pl DOUBLE,
		num_contracts INTEGER,
		margin_req DOUBLE,
		reason_for_close VARCHAR,
		opening_commissions DOUBLE,
		closing_commissions DOUBLE,
		funds_at_close DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS block_sync (
		block_id VARCHAR NOT NULL,
		content_hash VARCHAR NOT NULL,
		trade_count INTEGER NOT NULL,
		last_synced_at TIMESTAMP NOT NULL,
		PRIMARY KEY (block_id)
	)`,
	`CREATE TABLE IF NOT EXISTS import_log (
		source VARCHAR NOT NULL,
		ticker VARCHAR NOT NULL,
		target_table VARCHAR NOT NULL,
		max_date_imported DATE,
		enriched_through DATE,
		synced_at TIMESTAMP NOT NULL,
		PRIMARY KEY (source, ticker, target_table)
	)`,
}
