package sqlinline

// Postgres key-value backend.

const QCreateKVTable = `--sql 3f0b7c1e-5a2d-4e8b-9c61-0d7a2b4e9f13
create table if not exists kv_entries (
  key        text primary key,
  value      text not null,
  updated_at timestamptz not null default now()
);
`

const QSelectKVEntry = `--sql 9c2e4a71-8b3f-4d05-a6e2-51f7c0d93b8a
select value
from kv_entries
where key = $1::text
limit 1;
`

const QUpsertKVEntry = `--sql b71d0e52-3c9a-4f6e-8d24-7e5a1c0b9f36
insert into kv_entries (key, value, updated_at)
values ($1::text, $2::text, now())
on conflict (key) do update set
  value = excluded.value,
  updated_at = now();
`

const QUpsertKVEntries = `--sql 5d19c7a2-8e4b-4f36-a0d5-b92e6c3f7a41
insert into kv_entries (key, value, updated_at)
select e.key, e.value, now()
from unnest($1::text[], $2::text[]) as e(key, value)
on conflict (key) do update set
  value = excluded.value,
  updated_at = now();
`

const QDeleteKVEntry = `--sql 4e8a1f93-0d6c-4b27-9e15-a3c7f2d08b64
delete from kv_entries
where key = $1::text;
`

// SQLite key-value backend. SQLite accepts the marker line as a comment, so
// these run unmodified.

const QSQLiteCreateKVTable = `--sql 6a3d9e05-7f1b-4c82-b4e0-2d8c5a7f1e39
create table if not exists kv_entries (
  key        text primary key,
  value      text not null,
  updated_at text not null default current_timestamp
);
`

const QSQLiteSelectKVEntry = `--sql d05b7c38-2e4f-4a91-8f6d-c1e9a3b5074f
select value from kv_entries where key = ? limit 1;
`

const QSQLiteUpsertKVEntry = `--sql 81f4c2a6-9d3e-4e07-b5a8-6c0d2f7e1b93
insert into kv_entries (key, value, updated_at)
values (?, ?, current_timestamp)
on conflict (key) do update set
  value = excluded.value,
  updated_at = current_timestamp;
`

const QSQLiteDeleteKVEntry = `--sql e29a6b14-c7d8-4f3a-9b05-3d1e8f6a2c70
delete from kv_entries where key = ?;
`
