package sqlinline

// QEnsureUsageSchema creates the usage ledger. It stores request metadata only.
const QEnsureUsageSchema = `--sql 721e179f-3d11-4eb8-b342-04de5b39ec31
create table if not exists cover_usage_events (
    id          bigserial primary key,
    request_id  text not null,
    occasion    text not null default '',
    provider    text not null,
    success     boolean not null,
    error_kind  text not null default '',
    latency_ms  bigint not null default 0,
    country     text not null default '',
    created_at  timestamptz not null default now()
);
create index if not exists cover_usage_events_created_at_idx on cover_usage_events (created_at);
`

const QInsertUsageEvent = `--sql e12c1144-2440-4795-8c62-fee0bd9751c2
insert into cover_usage_events(request_id, occasion, provider, success, error_kind, latency_ms, country, created_at)
values ($1::text, $2::text, $3::text, $4::boolean, $5::text, $6::bigint, $7::text, $8::timestamptz);
`

const QUsageTotals = `--sql 69c381c0-fa0f-44b8-ba93-05f4bd78f73a
select count(*)::bigint,
       count(*) filter (where success)::bigint,
       count(*) filter (where not success)::bigint,
       coalesce(avg(latency_ms), 0)::bigint
from cover_usage_events
where created_at >= now() - make_interval(secs => $1::double precision);
`

const QUsageTopOccasions = `--sql b8b24df3-02ed-4ba9-a4b3-5758e02b3a0d
select occasion, count(*)::bigint as n
from cover_usage_events
where created_at >= now() - make_interval(secs => $1::double precision)
  and occasion <> ''
group by occasion
order by n desc, occasion asc
limit $2::int;
`
