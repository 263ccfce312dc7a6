package druid

import "fmt"

// The warehouse keys events by an adapter UUID; lookups resolve it to the
// sending from-address (domain extracted after the @) and the adapter (ESP)
// name. Both query shapes group by (ESP, domain) over a half-open time range.

const deliverabilityQueryTemplate = `
SELECT
  MV_OFFSET(STRING_TO_MV(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_from_address'), '@'), 1) AS "From_domain",
  sum(case action when 'sent' then "count" else null end) as Sent,
  sum(case action when 'delivered' then "count" else null end) as Delivered,
  APPROX_COUNT_DISTINCT_DS_HLL(CASE WHEN action ='open' AND "extended_attributes.opened_by" = 'user' then "message_distinct" else null end) as Unique_user_open,
  APPROX_COUNT_DISTINCT_DS_HLL(CASE WHEN action ='open' AND "extended_attributes.opened_by" = 'pre-fetch' then "message_distinct" else null end) as Unique_pre_fetch_open,
  APPROX_COUNT_DISTINCT_DS_HLL(CASE WHEN action ='open' AND "extended_attributes.opened_by" = 'proxy' then "message_distinct" else null end) as Unique_proxy_open,
  APPROX_COUNT_DISTINCT_DS_HLL(CASE WHEN action ='click' then "message_distinct" else null end) as unique_click,
  sum(case action when 'bounce' then "count" else null end) as Bounces,
  APPROX_COUNT_DISTINCT_DS_HLL(case action when 'soft_bounce' then "message_distinct" else null end) as Unique_soft_bounce,
  sum(case action when 'spam_report' then "count" else null end) as Spam_report,
  sum(case action when 'unsubscribe' then "count" else null end) as Unsubscribe,
  LOOKUP(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_adapter_id'),'adapters_id-to-adapters_name') AS "ESP"
FROM ucts_1
WHERE "__time" >= TIMESTAMP '%s'
 AND "__time" < TIMESTAMP '%s'
 AND LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_from_address') IS NOT NULL
 AND LOOKUP(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_adapter_id'),'adapters_id-to-adapters_name') IN ('Sparkpost','Mailgun','Sendgrid')
GROUP BY
 LOOKUP(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_adapter_id'),'adapters_id-to-adapters_name'),
 MV_OFFSET(STRING_TO_MV(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_from_address'), '@'), 1)`

const pulsationQueryTemplate = `
SELECT
  MV_OFFSET(STRING_TO_MV(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_from_address'), '@'), 1) AS "From_domain",
  sum(case action when 'sent' then "count" else 0 end) as Sent,
  sum(case action when 'delivered' then "count" else 0 end) as Delivered,
  sum(case action when 'bounce' then "count" else 0 end) as Bounces,
  SUM(CASE WHEN action = 'soft_bounce' THEN "count" ELSE 0 END) AS Soft_bounce_count,
  sum(case action when 'spam_report' then "count" else 0 end) as Spam_report,
  sum(case action when 'unsubscribe' then "count" else 0 end) as Unsubscribe,
  LOOKUP(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_adapter_id'),'adapters_id-to-adapters_name') AS "ESP"
FROM ucts_1
WHERE "__time" >= TIMESTAMP '%s'
  AND "__time" < TIMESTAMP '%s'
  AND LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_from_address') IS NOT NULL
  AND LOOKUP(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_adapter_id'),'adapters_id-to-adapters_name') IN ('Sparkpost','Mailgun','Sendgrid')
GROUP BY
  LOOKUP(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_adapter_id'),'adapters_id-to-adapters_name'),
  MV_OFFSET(STRING_TO_MV(LOOKUP("extended_attributes.adapter_uuid", 'accountadapters_uuid-to-accountadapters_from_address'), '@'), 1)`

// DeliverabilityQuery renders the full-metric query for an MBR date range.
func DeliverabilityQuery(startDate, endDate string) string {
	return fmt.Sprintf(deliverabilityQueryTemplate, startDate, endDate)
}

// PulsationQuery renders the lighter daily-monitoring query (no open/click
// metrics; missing actions come back as zero rather than null).
func PulsationQuery(startDate, endDate string) string {
	return fmt.Sprintf(pulsationQueryTemplate, startDate, endDate)
}
